package messenger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gomidi "gitlab.com/gomidi/midi/v2"

	"midi-messenger/config"
	"midi-messenger/debug"
	"midi-messenger/midi"
)

// ErrNoSuchPad is returned when triggering a pad index that isn't configured
var ErrNoSuchPad = errors.New("no such pad")

// pitch wheel range, centre is 8192
const (
	pitchMax    = 16383
	pitchCentre = 8192
	pitchStep   = 512
)

// Line is one drained message, ready for display
type Line struct {
	Seconds float64
	Message gomidi.Message
	Text    string
}

// Manager owns the session clock, the pending message buffer and the log.
// Gestures insert stamped messages; Tick releases the ones that have come due.
type Manager struct {
	cfg   *config.Config
	id    string
	clock func() time.Time
	start time.Time
	rate  float64

	mu       sync.Mutex
	buffer   *midi.Buffer[gomidi.Message]
	previous int64 // everything before this position has been drained
	log      *Log

	volume  int
	program int
	pitch   int

	output *midi.Output

	// Notify TUI of new log lines
	UpdateChan chan struct{}
}

// Option configures a Manager
type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithOutput forwards drained messages to a MIDI out port
func WithOutput(out *midi.Output) Option {
	return func(m *Manager) { m.output = out }
}

// WithSessionID overrides the generated session id
func WithSessionID(id string) Option {
	return func(m *Manager) { m.id = id }
}

// NewManager starts a session: the session clock starts now
func NewManager(cfg *config.Config, opts ...Option) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m := &Manager{
		cfg:        cfg,
		clock:      time.Now,
		rate:       cfg.SampleRate,
		buffer:     midi.NewBuffer[gomidi.Message](),
		log:        NewLog(cfg.MaxLogLines),
		pitch:      pitchCentre,
		UpdateChan: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.id == "" {
		m.id = uuid.NewString()
	}
	if m.rate <= 0 {
		m.rate = config.DefaultConfig().SampleRate
	}
	m.start = m.clock()
	debug.Log("session", "started %s rate=%v", m.id, m.rate)
	return m
}

// SessionID returns the id of this session
func (m *Manager) SessionID() string {
	return m.id
}

// Config returns the session configuration
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Output returns the attached output (may be nil)
func (m *Manager) Output() *midi.Output {
	return m.output
}

// Elapsed returns seconds since session start
func (m *Manager) Elapsed() float64 {
	return m.clock().Sub(m.start).Seconds()
}

// AddMessage stamps msg with the current session time and queues it
func (m *Manager) AddMessage(msg gomidi.Message) midi.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(msg, m.Elapsed())
}

// AddMessageAt queues msg with an explicit session timestamp in seconds
func (m *Manager) AddMessageAt(msg gomidi.Message, seconds float64) midi.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addLocked(msg, seconds)
}

func (m *Manager) addLocked(msg gomidi.Message, seconds float64) midi.Event {
	m.buffer.Insert(msg, midi.Position(seconds, m.rate))
	return midi.Event{Message: msg, Timestamp: seconds}
}

// Pads returns the configured pads
func (m *Manager) Pads() []config.PadConfig {
	return m.cfg.Pads
}

// TriggerPad plays pad i: note on now, note off noteLength later
func (m *Manager) TriggerPad(i int) error {
	if i < 0 || i >= len(m.cfg.Pads) {
		return fmt.Errorf("%w: %d", ErrNoSuchPad, i+1)
	}
	pad := m.cfg.Pads[i]
	ch := channel(m.cfg.NoteChannel)

	m.mu.Lock()
	defer m.mu.Unlock()

	on := m.addLocked(gomidi.NoteOn(ch, pad.Note, m.cfg.Velocity), m.Elapsed())
	m.addLocked(gomidi.NoteOff(ch, pad.Note), on.Timestamp+m.cfg.NoteLength.Std().Seconds())
	return nil
}

// Volume returns the current slider value
func (m *Manager) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// SetVolume moves the volume slider (0-127) and sends the controller if it changed
func (m *Manager) SetVolume(v int) bool {
	v = clamp(v, 0, 127)

	m.mu.Lock()
	defer m.mu.Unlock()

	if v == m.volume {
		return false
	}
	m.volume = v
	m.addLocked(gomidi.ControlChange(channel(m.cfg.ControlChannel), m.cfg.VolumeCC, uint8(v)), m.Elapsed())
	return true
}

// Program returns the last program sent
func (m *Manager) Program() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.program
}

// ProgramChange steps the program number by delta and sends it
func (m *Manager) ProgramChange(delta int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.program = clamp(m.program+delta, 0, 127)
	m.addLocked(gomidi.ProgramChange(channel(m.cfg.NoteChannel), uint8(m.program)), m.Elapsed())
	return m.program
}

// Pitch returns the pitch wheel position (0-16383)
func (m *Manager) Pitch() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pitch
}

// PitchWheel moves the pitch wheel by delta steps (0 recentres it)
func (m *Manager) PitchWheel(delta int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if delta == 0 {
		m.pitch = pitchCentre
	} else {
		m.pitch = clamp(m.pitch+delta*pitchStep, 0, pitchMax)
	}
	m.addLocked(gomidi.Pitchbend(channel(m.cfg.NoteChannel), int16(m.pitch-pitchCentre)), m.Elapsed())
	return m.pitch
}

// AllNotesOff sends CC 123 on the note channel
func (m *Manager) AllNotesOff() {
	m.AddMessage(gomidi.ControlChange(channel(m.cfg.NoteChannel), midi.CCAllNotesOff, 0))
}

// AllSoundOff sends CC 120 on the note channel
func (m *Manager) AllSoundOff() {
	m.AddMessage(gomidi.ControlChange(channel(m.cfg.NoteChannel), midi.CCAllSoundOff, 0))
}

// Tick drains every message that has come due since the last tick, logs
// them and forwards them to the output. It returns the new lines.
func (m *Manager) Tick() []Line {
	m.mu.Lock()

	current := midi.Cursor(m.Elapsed(), m.rate)

	var entries []midi.Entry[gomidi.Message]
	if m.buffer.Len() > 0 {
		entries = m.buffer.Drain(m.previous, current)
	}
	if current > m.previous {
		m.previous = current
	}

	lines := make([]Line, 0, len(entries))
	for _, e := range entries {
		secs := midi.Seconds(e.Position, m.rate)
		line := Line{
			Seconds: secs,
			Message: e.Value,
			Text:    midi.LogLine(secs, e.Value),
		}
		m.log.Append(line.Text)
		lines = append(lines, line)
	}
	m.mu.Unlock()

	// send outside the lock, ports can be slow
	if m.output != nil {
		for _, l := range lines {
			if err := m.output.Send(l.Message); err != nil {
				debug.LogEvery(100, "output", "send failed: %v", err)
			}
		}
	}

	if len(lines) > 0 {
		debug.Log("tick", "cursor=%d drained=%d", current, len(lines))
	}
	return lines
}

// Run calls Tick every tickInterval until ctx is cancelled
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.TickInterval.Std()
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// the header clock still needs redraws while nothing is queued
	const idleRedraw = 100 * time.Millisecond
	var lastNotify time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if lines := m.Tick(); len(lines) > 0 || now.Sub(lastNotify) >= idleRedraw {
				lastNotify = now
				m.notifyUpdate()
			}
		}
	}
}

// Attach queues everything an input sends until its channel closes
func (m *Manager) Attach(in midi.Input) {
	go func() {
		for msg := range in.Messages() {
			m.AddMessage(msg)
		}
		debug.Log("session", "input %q detached", in.ID())
	}()
}

// Cursor returns the position everything before which has been drained
func (m *Manager) Cursor() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previous
}

// Pending returns the number of queued messages
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffer.Len()
}

// Lines returns a snapshot of the session log
func (m *Manager) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.Snapshot()
}

// Tail returns the last n log lines
func (m *Manager) Tail(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log.Tail(n)
}

// ClearLog empties the visible log; queued messages are kept
func (m *Manager) ClearLog() {
	m.mu.Lock()
	m.log.Clear()
	m.mu.Unlock()
	m.notifyUpdate()
}

// Prune drops queued messages in [from, from+count) without logging them
func (m *Manager) Prune(from, count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffer.Clear(from, count)
}

func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// channel converts a 1-16 channel to gomidi's 0-15
func channel(ch int) uint8 {
	return uint8(clamp(ch, 1, 16) - 1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
