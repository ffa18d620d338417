package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"midi-messenger/config"
	"midi-messenger/debug"
	"midi-messenger/messenger"
	"midi-messenger/midi"
	"midi-messenger/theme"
	"midi-messenger/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/midi-messenger/config.json)")
	debugLog := flag.Bool("debug", false, "write a debug log to ~/.config/midi-messenger/debug.log")
	outputPort := flag.String("output", "", "forward messages to this MIDI output port")
	flag.Parse()

	if err := run(*configPath, *debugLog, *outputPort); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debugLog bool, outputPort string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if outputPort != "" {
		cfg.OutputPort = outputPort
	}
	if debugLog {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Debug {
		if err := debug.Enable(""); err != nil {
			return err
		}
		defer debug.Disable()
	}
	defer gomidi.CloseDriver()

	th, err := theme.Load(cfg.Palette)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	manager := messenger.NewManager(cfg, messenger.WithOutput(midi.NewOutput(cfg.OutputPort)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	// Hardware inputs are optional, they're logged like on-screen gestures
	var deviceMgr *midi.DeviceManager
	if cfg.AutoConnectInputs {
		deviceMgr = midi.NewDeviceManager(cfg.InputFilters)
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(manager, deviceMgr, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, err = p.Run()
	return err
}
