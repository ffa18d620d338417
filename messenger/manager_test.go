package messenger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	"midi-messenger/config"
	"midi-messenger/midi"
)

type fakeClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
}

func newFakeClock() *fakeClock {
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &fakeClock{start: t0, now: t0}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// at moves the clock to d after session start
func (c *fakeClock) at(d time.Duration) {
	c.mu.Lock()
	c.now = c.start.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now), WithSessionID("test")}, opts...)
	return NewManager(config.DefaultConfig(), opts...), clock
}

func texts(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return out
}

func TestTriggerPadLogsNoteOnThenNoteOff(t *testing.T) {
	m, clock := newTestManager(t)

	clock.at(100 * time.Millisecond)
	require.NoError(t, m.TriggerPad(0))
	assert.Equal(t, 2, m.Pending())

	clock.at(150 * time.Millisecond)
	assert.Equal(t, []string{"00:00:00.100  -  Note on C1"}, texts(m.Tick()))

	clock.at(180 * time.Millisecond)
	assert.Empty(t, m.Tick(), "note off is not due yet")

	clock.at(250 * time.Millisecond)
	assert.Equal(t, []string{"00:00:00.200  -  Note off C1"}, texts(m.Tick()))

	assert.Zero(t, m.Pending())
	assert.Equal(t, []string{
		"00:00:00.100  -  Note on C1",
		"00:00:00.200  -  Note off C1",
	}, m.Lines())
}

func TestTriggerPadOutOfRange(t *testing.T) {
	m, _ := newTestManager(t)
	assert.ErrorIs(t, m.TriggerPad(4), ErrNoSuchPad)
	assert.ErrorIs(t, m.TriggerPad(-1), ErrNoSuchPad)
	assert.Zero(t, m.Pending())
}

func TestTriggerPadMessages(t *testing.T) {
	m, clock := newTestManager(t)
	require.NoError(t, m.TriggerPad(1))
	clock.at(time.Second)

	lines := m.Tick()
	require.Len(t, lines, 2)

	var ch, key, vel uint8
	require.True(t, lines[0].Message.GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(0), ch)
	assert.Equal(t, uint8(38), key)
	assert.Equal(t, uint8(100), vel)

	require.True(t, lines[1].Message.GetNoteEnd(&ch, &key))
	assert.Equal(t, uint8(38), key)
	assert.InDelta(t, 0.1, lines[1].Seconds-lines[0].Seconds, 1e-4)
}

func TestSetVolume(t *testing.T) {
	m, clock := newTestManager(t)

	assert.True(t, m.SetVolume(64))
	assert.False(t, m.SetVolume(64), "unchanged value sends nothing")
	assert.True(t, m.SetVolume(500))
	assert.Equal(t, 127, m.Volume())
	assert.True(t, m.SetVolume(-3))
	assert.Equal(t, 0, m.Volume())

	clock.at(10 * time.Millisecond)
	lines := m.Tick()
	assert.Equal(t, []string{
		"00:00:00.000  -  Controller Volume (coarse): 64",
		"00:00:00.000  -  Controller Volume (coarse): 127",
		"00:00:00.000  -  Controller Volume (coarse): 0",
	}, texts(lines))

	var ch, cc, val uint8
	require.True(t, lines[0].Message.GetControlChange(&ch, &cc, &val))
	assert.Equal(t, uint8(9), ch, "controller goes out on channel 10")
}

func TestOtherGestures(t *testing.T) {
	m, clock := newTestManager(t)

	assert.Equal(t, 1, m.ProgramChange(1))
	assert.Equal(t, 0, m.ProgramChange(-5))
	assert.Equal(t, 8192+512, m.PitchWheel(1))
	assert.Equal(t, 8192, m.PitchWheel(0))
	m.AllNotesOff()
	m.AllSoundOff()

	clock.at(time.Millisecond)
	assert.Equal(t, []string{
		"00:00:00.000  -  Program change 1",
		"00:00:00.000  -  Program change 0",
		"00:00:00.000  -  Pitch wheel 8704",
		"00:00:00.000  -  Pitch wheel 8192",
		"00:00:00.000  -  All notes off",
		"00:00:00.000  -  All sound off",
	}, texts(m.Tick()))
}

func TestTickCursorIsMonotonic(t *testing.T) {
	m, clock := newTestManager(t)

	clock.at(time.Second)
	m.Tick()
	assert.Equal(t, int64(44100), m.Cursor())

	// a clock step backwards must not rewind the cursor
	clock.at(500 * time.Millisecond)
	m.Tick()
	assert.Equal(t, int64(44100), m.Cursor())
}

func TestLateMessageDrainedNextTick(t *testing.T) {
	m, clock := newTestManager(t)

	clock.at(time.Second)
	m.Tick()

	m.AddMessageAt(gomidi.NoteOn(0, 60, 100), 0.5)
	clock.at(time.Second + time.Millisecond)
	assert.Equal(t, []string{"00:00:00.500  -  Note on C3"}, texts(m.Tick()))
}

func TestAddMessageStampsElapsed(t *testing.T) {
	m, clock := newTestManager(t)
	clock.at(2500 * time.Millisecond)

	ev := m.AddMessage(gomidi.ProgramChange(0, 3))
	assert.InDelta(t, 2.5, ev.Timestamp, 1e-9)
}

func TestPrune(t *testing.T) {
	m, clock := newTestManager(t)
	m.AddMessageAt(gomidi.NoteOn(0, 60, 100), 1)
	m.AddMessageAt(gomidi.NoteOn(0, 62, 100), 2)

	m.Prune(midi.Position(1, 44100), 10)
	assert.Equal(t, 1, m.Pending())

	clock.at(3 * time.Second)
	assert.Equal(t, []string{"00:00:02.000  -  Note on D3"}, texts(m.Tick()))
}

func TestTickForwardsToOutput(t *testing.T) {
	var mu sync.Mutex
	var sent []gomidi.Message
	out := midi.NewOutputWith("Synth", func(string) (midi.Sender, error) {
		return func(msg gomidi.Message) error {
			mu.Lock()
			sent = append(sent, msg)
			mu.Unlock()
			return nil
		}, nil
	})

	m, clock := newTestManager(t, WithOutput(out))
	require.NoError(t, m.TriggerPad(2))
	clock.at(time.Second)
	m.Tick()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 2)
	assert.Equal(t, "Note on F#1", midi.Describe(sent[0]))
	assert.Equal(t, "Note off F#1", midi.Describe(sent[1]))
}

func TestLogBoundedByConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxLogLines = 3
	clock := newFakeClock()
	m := NewManager(cfg, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		m.AddMessageAt(gomidi.ProgramChange(0, uint8(i)), 0)
	}
	clock.at(time.Second)
	m.Tick()

	assert.Equal(t, []string{
		"00:00:00.000  -  Program change 2",
		"00:00:00.000  -  Program change 3",
		"00:00:00.000  -  Program change 4",
	}, m.Lines())
	assert.Equal(t, []string{"00:00:00.000  -  Program change 4"}, m.Tail(1))

	m.ClearLog()
	assert.Empty(t, m.Lines())
}

func TestSessionID(t *testing.T) {
	m := NewManager(nil)
	assert.Len(t, m.SessionID(), 36)
	assert.NotEqual(t, m.SessionID(), NewManager(nil).SessionID())
}

func TestRunNotifiesUpdates(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewManager(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.AddMessage(gomidi.NoteOn(0, 60, 100))

	select {
	case <-m.UpdateChan:
	case <-time.After(2 * time.Second):
		t.Fatal("no update after message came due")
	}
	require.Eventually(t, func() bool { return len(m.Lines()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, m.Lines()[0], "Note on C3")
}

type fakeInput struct {
	ch chan gomidi.Message
}

func (f *fakeInput) ID() string                       { return "fake" }
func (f *fakeInput) Messages() <-chan gomidi.Message { return f.ch }
func (f *fakeInput) Close() error                     { close(f.ch); return nil }

func TestAttachQueuesInputMessages(t *testing.T) {
	m, clock := newTestManager(t)
	in := &fakeInput{ch: make(chan gomidi.Message, 4)}
	m.Attach(in)

	clock.at(300 * time.Millisecond)
	in.ch <- gomidi.NoteOn(0, 64, 90)
	in.ch <- gomidi.ControlChange(0, 64, 127)
	in.Close()

	require.Eventually(t, func() bool { return m.Pending() == 2 }, time.Second, time.Millisecond)

	clock.at(time.Second)
	assert.Equal(t, []string{
		"00:00:00.300  -  Note on E3",
		"00:00:00.300  -  Controller Hold Pedal (on/off): 127",
	}, texts(m.Tick()))
}
