// Package mqtt publishes button presses, LED changes and lifecycle events,
// and receives LED commands. The Publisher interface lets the daemon run
// against a fake in tests.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/devboard/internal/events"
)

const (
	// TopicButtons carries debounced presses.
	TopicButtons = "devboard/button/events"

	// TopicLEDs carries LED state after explicit operations.
	TopicLEDs = "devboard/led/state"

	// TopicSystem carries lifecycle events and heartbeats.
	TopicSystem = "devboard/system"

	// TopicCommands matches the per-LED command topics devboard/led/<n>/set.
	TopicCommands = "devboard/led/+/set"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishPress sends a button press.
	// Returns error if publishing fails (should not crash the process).
	PublishPress(e events.ButtonPressed) error

	// PublishLED sends an LED state change.
	PublishLED(e events.LEDChanged) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// PressPayload is the message published for a button press.
type PressPayload struct {
	Button PressInner `json:"button"`
}

// PressInner contains the press details.
type PressInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Button    string `json:"button"`
}

// FormatPressPayload creates the JSON payload for a press.
func FormatPressPayload(e events.ButtonPressed) ([]byte, error) {
	return json.Marshal(PressPayload{
		Button: PressInner{
			Timestamp: e.At.UTC().Format(time.RFC3339Nano),
			Event:     "PRESSED",
			Button:    e.Button.String(),
		},
	})
}

// LEDPayload is the message published for an LED change.
type LEDPayload struct {
	LED LEDInner `json:"led"`
}

// LEDInner contains the LED details.
type LEDInner struct {
	Timestamp string `json:"timestamp"`
	LED       string `json:"led"`
	Mode      string `json:"mode"`
	Duty      uint16 `json:"duty"`
	Hz        int    `json:"hz,omitempty"`
}

// FormatLEDPayload creates the JSON payload for an LED change.
func FormatLEDPayload(e events.LEDChanged) ([]byte, error) {
	return json.Marshal(LEDPayload{
		LED: LEDInner{
			Timestamp: e.At.UTC().Format(time.RFC3339Nano),
			LED:       e.State.ID.String(),
			Mode:      e.State.Mode(),
			Duty:      e.State.Duty,
			Hz:        int(e.State.Frequency),
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
