package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Timecode formats seconds as HH:MM:SS.mmm (hours wrap at 24)
func Timecode(seconds float64) string {
	hours := int(seconds/3600.0) % 24
	minutes := int(seconds/60.0) % 60
	secs := int(seconds) % 60
	millis := int(seconds*1000.0) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// LogLine renders one log entry: "<timecode>  -  <description>"
func LogLine(seconds float64, msg gomidi.Message) string {
	return Timecode(seconds) + "  -  " + Describe(msg)
}
