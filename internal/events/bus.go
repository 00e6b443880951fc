// Package events fans button presses and LED changes out to the MQTT
// publisher and the status tracker.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting.
// Delivery is asynchronous; handlers run on the dispatcher's goroutines.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case ButtonPressed:
		event.Publish(b.dispatcher, e)
	case LEDChanged:
		event.Publish(b.dispatcher, e)
	case BrokerStatus:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type it accepts and returns
// an unsubscribe function. Unknown handler types get a no-op.
// Usage: unsub := bus.Subscribe(func(e ButtonPressed) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ButtonPressed):
		return event.Subscribe(b.dispatcher, h)
	case func(LEDChanged):
		return event.Subscribe(b.dispatcher, h)
	case func(BrokerStatus):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
