package midi

import (
	"errors"
	"fmt"
	"sync"

	"midi-messenger/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// ErrPortNotFound is returned when no output port matches the configured name
var ErrPortNotFound = errors.New("midi output port not found")

// Sender sends one message to an opened port
type Sender func(gomidi.Message) error

// Opener opens a named output port
type Opener func(portName string) (Sender, error)

// Output forwards messages to a named MIDI out port, opening it lazily.
// A failed open is remembered so the port isn't probed on every message.
type Output struct {
	portName string
	open     Opener

	mu     sync.Mutex
	sender Sender
	failed bool
}

// NewOutput creates an output for portName. An empty name disables sending.
func NewOutput(portName string) *Output {
	return NewOutputWith(portName, OpenPort)
}

// NewOutputWith creates an output that opens ports through open
func NewOutputWith(portName string, open Opener) *Output {
	return &Output{portName: portName, open: open}
}

// PortName returns the configured port name
func (o *Output) PortName() string {
	return o.portName
}

// Enabled reports whether the output has a port to send to
func (o *Output) Enabled() bool {
	return o.portName != ""
}

// Send forwards msg to the port. Disabled outputs drop messages silently.
func (o *Output) Send(msg gomidi.Message) error {
	sender, err := o.getSender()
	if err != nil || sender == nil {
		return err
	}
	if err := sender(msg); err != nil {
		return fmt.Errorf("send to %s: %w", o.portName, err)
	}
	return nil
}

// Reset forgets the opened port so the next Send reopens it
func (o *Output) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sender = nil
	o.failed = false
}

func (o *Output) getSender() (Sender, error) {
	if o.portName == "" {
		return nil, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.sender != nil {
		return o.sender, nil
	}
	if o.failed {
		return nil, nil
	}

	sender, err := o.open(o.portName)
	if err != nil {
		o.failed = true
		debug.Log("output", "open %q failed: %v", o.portName, err)
		return nil, fmt.Errorf("open output %s: %w", o.portName, err)
	}
	debug.Log("output", "opened %q", o.portName)
	o.sender = sender
	return sender, nil
}

// OpenPort finds an output port by exact name and opens it
func OpenPort(portName string) (Sender, error) {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, err
			}
			return send, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPortNotFound, portName)
}
