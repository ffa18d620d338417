package midi

import (
	"math"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Controller numbers with their own description
const (
	CCVolume      uint8 = 7
	CCAllSoundOff uint8 = 120
	CCAllNotesOff uint8 = 123
)

// Event is a MIDI message stamped with seconds since session start
type Event struct {
	Message   gomidi.Message
	Timestamp float64
}

// Position converts a timestamp to a buffer position at the given rate.
// Negative timestamps map to 0.
func Position(seconds, rate float64) int64 {
	p := math.Round(seconds * rate)
	if p < 0 {
		return 0
	}
	return int64(p)
}

// Cursor converts elapsed time to the drain cursor (always rounds down)
func Cursor(seconds, rate float64) int64 {
	c := math.Floor(seconds * rate)
	if c < 0 {
		return 0
	}
	return int64(c)
}

// Seconds converts a buffer position back to a display timestamp
func Seconds(position int64, rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return float64(position) / rate
}
