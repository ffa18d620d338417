package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"midi-messenger/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DeviceEvent is emitted when inputs connect/disconnect
type DeviceEvent struct {
	Type  DeviceEventType
	Input Input
	ID    string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI inputs
type DeviceManager struct {
	inputs   map[string]Input
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration

	// filters select inputs by case-insensitive substring; empty accepts all
	filters []string
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(filters []string) *DeviceManager {
	return &DeviceManager{
		inputs:   make(map[string]Input),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
		filters:  filters,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Inputs returns the IDs of connected inputs
func (dm *DeviceManager) Inputs() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	ids := make([]string, 0, len(dm.inputs))
	for id := range dm.inputs {
		ids = append(ids, id)
	}
	return ids
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// port enumeration can hang on some drivers (CoreMIDI)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("devices", "port scan timed out")
		return
	}

	seen := make(map[string]bool)
	for _, inPort := range inPorts {
		id := inPort.String()
		if !MatchesFilter(id, dm.filters) {
			continue
		}
		seen[id] = true

		dm.mu.RLock()
		_, exists := dm.inputs[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := NewKeyboardController(id, inPort)
		if err != nil {
			debug.Log("devices", "connect %q: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.inputs[id] = kb
		dm.mu.Unlock()

		debug.Log("devices", "connected %q", id)
		dm.events <- DeviceEvent{Type: DeviceConnected, Input: kb, ID: id}
	}

	dm.mu.Lock()
	var toRemove []string
	for id := range dm.inputs {
		if !seen[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.inputs[id].Close()
		delete(dm.inputs, id)
	}
	dm.mu.Unlock()

	for _, id := range toRemove {
		debug.Log("devices", "disconnected %q", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, in := range dm.inputs {
		in.Close()
	}
	dm.inputs = make(map[string]Input)
}

// MatchesFilter reports whether a port name contains any of filters
// (case-insensitive). No filters matches everything.
func MatchesFilter(name string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	name = strings.ToLower(name)
	for _, f := range filters {
		if f != "" && strings.Contains(name, strings.ToLower(f)) {
			return true
		}
	}
	return false
}
