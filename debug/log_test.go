package debug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	require.NoError(t, Enable(path))
	t.Cleanup(Disable)

	assert.True(t, Enabled())
	Log("tick", "cursor=%d drained=%d", 4410, 1)
	for i := 0; i < 4; i++ {
		LogEvery(2, "input", "dropped %s", "msg")
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Debug logging started")
	assert.Contains(t, out, "cursor=4410 drained=1")
	assert.Contains(t, out, `"cat": "tick"`)
	assert.Contains(t, out, "dropped msg (every 2, count=4)")
}

func TestLogDisabledIsNoop(t *testing.T) {
	Disable()
	assert.False(t, Enabled())
	Log("x", "nothing %d", 1)
}
