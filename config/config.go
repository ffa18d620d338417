package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment overrides, also read from a .env file in the working directory
const (
	EnvOutputPort = "MIDIMSG_OUTPUT_PORT"
	EnvSampleRate = "MIDIMSG_SAMPLE_RATE"
	EnvDebug      = "MIDIMSG_DEBUG"
	EnvPalette    = "MIDIMSG_PALETTE"
)

// Duration is a time.Duration stored as a string ("100ms") in JSON
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// plain numbers are milliseconds
		var ms float64
		if err2 := json.Unmarshal(b, &ms); err2 != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(ms * float64(time.Millisecond))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// PadConfig is one on-screen drum button
type PadConfig struct {
	Name string `json:"name"`
	Note uint8  `json:"note"`
}

// Label is the button text, e.g. "Bass Drum (36)"
func (p PadConfig) Label() string {
	return fmt.Sprintf("%s (%d)", p.Name, p.Note)
}

// Config is the main configuration structure
type Config struct {
	SampleRate     float64  `json:"sampleRate"`
	TickInterval   Duration `json:"tickInterval"`
	NoteChannel    int      `json:"noteChannel"`    // 1-16
	ControlChannel int      `json:"controlChannel"` // 1-16
	Velocity       uint8    `json:"velocity"`
	NoteLength     Duration `json:"noteLength"`
	VolumeCC       uint8    `json:"volumeCC"`

	Pads []PadConfig `json:"pads"`

	OutputPort        string   `json:"outputPort,omitempty"`
	InputFilters      []string `json:"inputFilters,omitempty"`
	AutoConnectInputs bool     `json:"autoConnectInputs"`

	MaxLogLines int    `json:"maxLogLines"`
	Palette     string `json:"palette,omitempty"`
	Debug       bool   `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SampleRate:     44100,
		TickInterval:   Duration(time.Millisecond),
		NoteChannel:    1,
		ControlChannel: 10,
		Velocity:       100,
		NoteLength:     Duration(100 * time.Millisecond),
		VolumeCC:       7,
		Pads: []PadConfig{
			{Name: "Bass Drum", Note: 36},
			{Name: "Snare Drum", Note: 38},
			{Name: "Closed HH", Note: 42},
			{Name: "Open HH", Note: 46},
		},
		AutoConnectInputs: true,
		MaxLogLines:       1000,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midi-messenger"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found.
// Environment overrides are applied on top.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Fields missing from the file keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. A .env file in the working
// directory is loaded first; variables already set win over it.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv(EnvOutputPort); ok {
		c.OutputPort = v
	}
	if v, ok := os.LookupEnv(EnvSampleRate); ok {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.SampleRate = rate
		}
	}
	if v, ok := os.LookupEnv(EnvDebug); ok {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Debug = on
		}
	}
	if v, ok := os.LookupEnv(EnvPalette); ok {
		c.Palette = v
	}
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid field
func (c *Config) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sampleRate must be positive, got %v", c.SampleRate))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tickInterval must be positive, got %v", c.TickInterval.Std()))
	}
	if c.NoteChannel < 1 || c.NoteChannel > 16 {
		errs = append(errs, fmt.Errorf("noteChannel must be 1-16, got %d", c.NoteChannel))
	}
	if c.ControlChannel < 1 || c.ControlChannel > 16 {
		errs = append(errs, fmt.Errorf("controlChannel must be 1-16, got %d", c.ControlChannel))
	}
	if c.Velocity < 1 || c.Velocity > 127 {
		errs = append(errs, fmt.Errorf("velocity must be 1-127, got %d", c.Velocity))
	}
	if c.NoteLength < 0 {
		errs = append(errs, fmt.Errorf("noteLength must not be negative, got %v", c.NoteLength.Std()))
	}
	if c.VolumeCC > 127 {
		errs = append(errs, fmt.Errorf("volumeCC must be 0-127, got %d", c.VolumeCC))
	}
	if len(c.Pads) > 9 {
		errs = append(errs, fmt.Errorf("at most 9 pads, got %d", len(c.Pads)))
	}
	for i, p := range c.Pads {
		if p.Note > 127 {
			errs = append(errs, fmt.Errorf("pad %d: note must be 0-127, got %d", i+1, p.Note))
		}
	}
	if c.MaxLogLines < 1 {
		errs = append(errs, fmt.Errorf("maxLogLines must be at least 1, got %d", c.MaxLogLines))
	}
	return errors.Join(errs...)
}
