package midi

import (
	"fmt"
	"strconv"

	gomidi "gitlab.com/gomidi/midi/v2"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// middle C (60) is shown in this octave
const middleCOctave = 3

// NoteName converts a MIDI note to a name with octave, e.g. 36 -> "C1", 61 -> "C#3"
func NoteName(note uint8) string {
	octave := int(note)/12 + middleCOctave - 5
	return noteNames[note%12] + strconv.Itoa(octave)
}

// controllerNames follows the General MIDI controller list; gaps are unnamed
var controllerNames = map[uint8]string{
	0:   "Bank Select",
	1:   "Modulation Wheel (coarse)",
	2:   "Breath controller (coarse)",
	4:   "Foot Pedal (coarse)",
	5:   "Portamento Time (coarse)",
	6:   "Data Entry (coarse)",
	7:   "Volume (coarse)",
	8:   "Balance (coarse)",
	10:  "Pan position (coarse)",
	11:  "Expression (coarse)",
	12:  "Effect Control 1 (coarse)",
	13:  "Effect Control 2 (coarse)",
	16:  "General Purpose Slider 1",
	17:  "General Purpose Slider 2",
	18:  "General Purpose Slider 3",
	19:  "General Purpose Slider 4",
	32:  "Bank Select (fine)",
	33:  "Modulation Wheel (fine)",
	34:  "Breath controller (fine)",
	36:  "Foot Pedal (fine)",
	37:  "Portamento Time (fine)",
	38:  "Data Entry (fine)",
	39:  "Volume (fine)",
	40:  "Balance (fine)",
	42:  "Pan position (fine)",
	43:  "Expression (fine)",
	44:  "Effect Control 1 (fine)",
	45:  "Effect Control 2 (fine)",
	64:  "Hold Pedal (on/off)",
	65:  "Portamento (on/off)",
	66:  "Sustenuto Pedal (on/off)",
	67:  "Soft Pedal (on/off)",
	68:  "Legato Pedal (on/off)",
	69:  "Hold 2 Pedal (on/off)",
	70:  "Sound Variation",
	71:  "Sound Timbre",
	72:  "Sound Release Time",
	73:  "Sound Attack Time",
	74:  "Sound Brightness",
	75:  "Sound Control 6",
	76:  "Sound Control 7",
	77:  "Sound Control 8",
	78:  "Sound Control 9",
	79:  "Sound Control 10",
	80:  "General Purpose Button 1 (on/off)",
	81:  "General Purpose Button 2 (on/off)",
	82:  "General Purpose Button 3 (on/off)",
	83:  "General Purpose Button 4 (on/off)",
	91:  "Reverb Level",
	92:  "Tremolo Level",
	93:  "Chorus Level",
	94:  "Celeste Level",
	95:  "Phaser Level",
	96:  "Data Button increment",
	97:  "Data Button decrement",
	98:  "Non-registered Parameter (fine)",
	99:  "Non-registered Parameter (coarse)",
	100: "Registered Parameter (fine)",
	101: "Registered Parameter (coarse)",
	120: "All Sound Off",
	121: "All Controllers Off",
	122: "Local Keyboard (on/off)",
	123: "All Notes Off",
	124: "Omni Mode Off",
	125: "Omni Mode On",
	126: "Mono Operation",
	127: "Poly Operation",
}

// ControllerName returns the GM name of a controller, or "" if it has none
func ControllerName(cc uint8) string {
	return controllerNames[cc]
}

// Describe renders a one-line human readable description of msg.
// Unrecognized messages fall back to a hex dump of the raw bytes.
func Describe(msg gomidi.Message) string {
	var channel, key, velocity, value, cc, program uint8
	var rel int16
	var abs uint16

	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		return "Note on " + NoteName(key)
	case msg.GetNoteEnd(&channel, &key):
		return "Note off " + NoteName(key)
	case msg.GetProgramChange(&channel, &program):
		return "Program change " + strconv.Itoa(int(program))
	case msg.GetPitchBend(&channel, &rel, &abs):
		return "Pitch wheel " + strconv.Itoa(int(abs))
	case msg.GetPolyAfterTouch(&channel, &key, &value):
		return fmt.Sprintf("After touch %s: %d", NoteName(key), value)
	case msg.GetAfterTouch(&channel, &value):
		return "Channel pressure " + strconv.Itoa(int(value))
	}

	if msg.GetControlChange(&channel, &cc, &value) {
		switch cc {
		case CCAllNotesOff:
			return "All notes off"
		case CCAllSoundOff:
			return "All sound off"
		}
		name := ControllerName(cc)
		if name == "" {
			name = "[" + strconv.Itoa(int(cc)) + "]"
		}
		return fmt.Sprintf("Controller %s: %d", name, value)
	}

	raw := []byte(msg)
	if len(raw) >= 2 && raw[0] == 0xFF {
		return "Meta event"
	}

	return fmt.Sprintf("% x", raw)
}
