package midi

import (
	"fmt"
	"sync"

	"midi-messenger/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController forwards everything a MIDI input port sends
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	msgChan   chan gomidi.Message
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewKeyboardController opens inPort and starts listening
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:      id,
		inPort:  inPort,
		msgChan: make(chan gomidi.Message, 64),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, kb.receive, gomidi.UseSysEx())
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", id, err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) receive(msg gomidi.Message, timestampms int32) {
	if isNoise(msg) {
		return
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()
	if kb.closed {
		return
	}

	// the driver may reuse its buffer
	cp := make(gomidi.Message, len(msg))
	copy(cp, msg)

	select {
	case kb.msgChan <- cp:
	default:
		debug.LogEvery(32, "input", "%s: dropped message, consumer too slow", kb.id)
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Messages() <-chan gomidi.Message {
	return kb.msgChan
}

func (kb *KeyboardController) Close() error {
	kb.closeOnce.Do(func() {
		if kb.stopFunc != nil {
			kb.stopFunc()
		}
		kb.mu.Lock()
		kb.closed = true
		close(kb.msgChan)
		kb.mu.Unlock()
	})
	return nil
}
