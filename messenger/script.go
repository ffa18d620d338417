package messenger

import (
	"sort"
	"time"

	"midi-messenger/config"
)

// Step is a gesture performed At into a scripted session
type Step struct {
	At time.Duration
	Do func(*Manager)
}

// virtualClock is advanced by hand instead of following the wall clock
type virtualClock struct {
	now time.Time
}

func (c *virtualClock) Now() time.Time { return c.now }

// RunScript plays steps against a fresh session on a virtual clock, ticking
// every tickInterval until until has passed, and returns every drained line.
// Steps run before the tick at their time.
func RunScript(cfg *config.Config, steps []Step, until time.Duration) []Line {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	steps = append([]Step(nil), steps...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

	clock := &virtualClock{now: time.Unix(0, 0)}
	start := clock.now
	m := NewManager(cfg, WithClock(clock.Now), WithSessionID("script"))

	interval := cfg.TickInterval.Std()
	if interval <= 0 {
		interval = time.Millisecond
	}

	var lines []Line
	next := 0
	for elapsed := time.Duration(0); elapsed <= until; elapsed += interval {
		clock.now = start.Add(elapsed)
		for next < len(steps) && steps[next].At <= elapsed {
			steps[next].Do(m)
			next++
		}
		lines = append(lines, m.Tick()...)
	}
	return lines
}

// DemoSteps presses every pad a quarter second apart, then sweeps the volume
func DemoSteps(cfg *config.Config) []Step {
	var steps []Step
	at := 100 * time.Millisecond
	for i := range cfg.Pads {
		i := i
		steps = append(steps, Step{At: at, Do: func(m *Manager) { m.TriggerPad(i) }})
		at += 250 * time.Millisecond
	}
	for _, v := range []int{32, 64, 100} {
		v := v
		steps = append(steps, Step{At: at, Do: func(m *Manager) { m.SetVolume(v) }})
		at += 50 * time.Millisecond
	}
	steps = append(steps, Step{At: at, Do: func(m *Manager) { m.AllNotesOff() }})
	return steps
}
