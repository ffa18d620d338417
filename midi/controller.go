package midi

import gomidi "gitlab.com/gomidi/midi/v2"

// Input is a connected MIDI input that feeds messages into the session
type Input interface {
	ID() string

	// Messages delivers every message received from the device
	Messages() <-chan gomidi.Message

	Close() error
}

// isNoise reports realtime bytes that would flood the log (clock, active sensing)
func isNoise(msg gomidi.Message) bool {
	raw := []byte(msg)
	return len(raw) == 1 && (raw[0] == 0xF8 || raw[0] == 0xFE)
}
