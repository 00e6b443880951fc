package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/devboard/internal/button"
	"github.com/sweeney/devboard/internal/led"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Buttons       []ButtonJSON `json:"buttons"`
	LEDs          []LEDJSON    `json:"leds"`
	BlinkRunning  bool         `json:"blink_running"`
	Demo          string       `json:"demo,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        *ConfigJSON  `json:"config,omitempty"`
}

// ButtonJSON is the JSON representation of one button.
type ButtonJSON struct {
	Button    string `json:"button"`
	Presses   int    `json:"presses"`
	LastPress string `json:"last_press,omitempty"`
}

// LEDJSON is the JSON representation of one LED.
type LEDJSON struct {
	LED  string `json:"led"`
	Mode string `json:"mode"`
	Duty uint16 `json:"duty"`
	Hz   int    `json:"hz,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip        string `json:"chip"`
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
	Demo        bool   `json:"demo"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		BlinkRunning:  snap.BlinkRunning,
		Demo:          string(snap.Demo),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
	}

	for i, b := range snap.Buttons {
		bj := ButtonJSON{Button: button.ID(i).String(), Presses: b.Presses}
		if !b.LastPress.IsZero() {
			bj.LastPress = b.LastPress.UTC().Format(time.RFC3339Nano)
		}
		inner.Buttons = append(inner.Buttons, bj)
	}
	for _, st := range snap.LEDs {
		inner.LEDs = append(inner.LEDs, NewLEDJSON(st))
	}
	return inner
}

// NewLEDJSON converts one LED state.
func NewLEDJSON(st led.State) LEDJSON {
	return LEDJSON{
		LED:  st.ID.String(),
		Mode: st.Mode(),
		Duty: st.Duty,
		Hz:   int(st.Frequency),
	}
}

func buildConfig(snap Snapshot) *ConfigJSON {
	return &ConfigJSON{
		Chip:        snap.Config.Chip,
		PollMs:      snap.Config.PollMs,
		DebounceMs:  snap.Config.DebounceMs,
		HeartbeatMs: snap.Config.HeartbeatMs,
		Broker:      snap.Config.Broker,
		HTTPPort:    snap.Config.HTTPPort,
		Demo:        snap.Config.Demo,
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	inner.Config = buildConfig(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
// Config is included on STARTUP only.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	if event == "STARTUP" {
		inner.Config = buildConfig(snap)
	}

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
