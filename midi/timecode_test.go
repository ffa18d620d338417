package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestTimecode(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{0.5, "00:00:00.500"},
		{59.75, "00:00:59.750"},
		{3725.25, "01:02:05.250"},
		{90000.125, "01:00:00.125"}, // hours wrap at 24
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Timecode(tt.seconds), "%v seconds", tt.seconds)
	}
}

func TestLogLine(t *testing.T) {
	assert.Equal(t, "00:00:01.500  -  Note on C3", LogLine(1.5, gomidi.NoteOn(0, 60, 90)))
}

func TestPositionConversions(t *testing.T) {
	assert.Equal(t, int64(4410), Position(0.1, 44100))
	assert.Equal(t, int64(8820), Position(0.2, 44100))
	assert.Equal(t, int64(0), Position(-1, 44100))
	assert.Equal(t, int64(2), Position(0.375, 4), "insert position rounds")

	assert.Equal(t, int64(1), Cursor(0.375, 4), "cursor floors")
	assert.Equal(t, int64(0), Cursor(-0.5, 1000))

	assert.InDelta(t, 0.1, Seconds(4410, 44100), 1e-12)
	assert.Zero(t, Seconds(10, 0))
}
