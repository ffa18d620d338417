package messenger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midi-messenger/config"
)

func TestRunScriptDemo(t *testing.T) {
	cfg := config.DefaultConfig()
	lines := RunScript(cfg, DemoSteps(cfg), 2*time.Second)

	// 4 pads * (on + off) + 3 volume moves + all notes off
	require.Len(t, lines, 12)
	assert.Equal(t, "00:00:00.100  -  Note on C1", lines[0].Text)
	assert.Equal(t, "00:00:00.200  -  Note off C1", lines[1].Text)
	assert.Equal(t, "Note on D1", lines[2].Text[len("00:00:00.350  -  "):])
	assert.Equal(t, "00:00:01.250  -  All notes off", lines[11].Text)

	for i := 1; i < len(lines); i++ {
		assert.GreaterOrEqual(t, lines[i].Seconds, lines[i-1].Seconds, "line %d out of order", i)
	}
}

func TestRunScriptStepsSortedAndLateStepsDropped(t *testing.T) {
	var order []int
	steps := []Step{
		{At: 30 * time.Millisecond, Do: func(m *Manager) { order = append(order, 2) }},
		{At: 10 * time.Millisecond, Do: func(m *Manager) { order = append(order, 1) }},
		{At: time.Hour, Do: func(m *Manager) { order = append(order, 3) }},
	}
	RunScript(nil, steps, 50*time.Millisecond)
	assert.Equal(t, []int{1, 2}, order)
}
