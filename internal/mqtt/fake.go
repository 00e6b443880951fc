package mqtt

import (
	"sync"

	"github.com/sweeney/devboard/internal/events"
)

// FakePublisher records published events for test assertions.
// It is safe for concurrent use; read the recorded events through the
// accessor methods while publishers may still be running.
type FakePublisher struct {
	mu sync.Mutex

	presses        []events.ButtonPressed
	leds           []events.LEDChanged
	systemEvents   []SystemEvent
	systemPayloads [][]byte

	// PublishError, if set, will be returned by PublishPress and PublishLED.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishPress records the press.
func (f *FakePublisher) PublishPress(e events.ButtonPressed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.presses = append(f.presses, e)
	return nil
}

// PublishLED records the LED change.
func (f *FakePublisher) PublishLED(e events.LEDChanged) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.leds = append(f.leds, e)
	return nil
}

// PublishSystem records the system event and its payload.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.systemEvents = append(f.systemEvents, event)
	f.systemPayloads = append(f.systemPayloads, payload)
	return nil
}

// Presses returns a copy of the recorded presses.
func (f *FakePublisher) Presses() []events.ButtonPressed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.ButtonPressed(nil), f.presses...)
}

// LEDs returns a copy of the recorded LED changes.
func (f *FakePublisher) LEDs() []events.LEDChanged {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.LEDChanged(nil), f.leds...)
}

// SystemEvents returns a copy of the recorded system events.
func (f *FakePublisher) SystemEvents() []SystemEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SystemEvent(nil), f.systemEvents...)
}

// SystemPayloads returns a copy of the recorded system payloads.
func (f *FakePublisher) SystemPayloads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.systemPayloads...)
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presses = nil
	f.leds = nil
	f.systemEvents = nil
	f.systemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
