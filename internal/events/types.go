package events

import (
	"time"

	"github.com/sweeney/devboard/internal/button"
	"github.com/sweeney/devboard/internal/led"
)

// Event type constants for kelindar/event.
const (
	TypeButtonPressed uint32 = iota + 1
	TypeLEDChanged
	TypeBrokerStatus
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ButtonPressed is a debounced press.
type ButtonPressed struct {
	Button button.ID
	At     time.Time
}

// Type returns the event type identifier for ButtonPressed.
func (e ButtonPressed) Type() uint32 { return TypeButtonPressed }

// LEDChanged reports the state after an explicit LED operation.
type LEDChanged struct {
	State led.State
	At    time.Time
}

// Type returns the event type identifier for LEDChanged.
func (e LEDChanged) Type() uint32 { return TypeLEDChanged }

// BrokerStatus reports MQTT connection changes.
type BrokerStatus struct {
	Connected bool
	At        time.Time
}

// Type returns the event type identifier for BrokerStatus.
func (e BrokerStatus) Type() uint32 { return TypeBrokerStatus }
