// Package status provides a thread-safe status tracker for the devboard
// daemon. It is read by the HTTP handlers and by heartbeat publishing.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/devboard/internal/button"
	"github.com/sweeney/devboard/internal/led"
	"github.com/sweeney/devboard/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip        string
	PollMs      int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
	Demo        bool
}

// ButtonInfo is the press history of one button.
type ButtonInfo struct {
	Presses   int
	LastPress time.Time // zero until the first press
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Buttons       [button.Count]ButtonInfo
	LEDs          [led.Count]led.State
	BlinkRunning  bool
	Demo          logic.State // empty when the demo is off
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// TotalPresses returns the press count summed over all buttons.
func (s Snapshot) TotalPresses() int {
	n := 0
	for _, b := range s.Buttons {
		n += b.Presses
	}
	return n
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	t := &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
	for i := range t.snap.LEDs {
		t.snap.LEDs[i].ID = led.ID(i)
	}
	return t
}

// RecordPress counts a debounced press. Unknown buttons are ignored.
func (t *Tracker) RecordPress(id button.ID, at time.Time) {
	if !id.Valid() {
		return
	}
	t.mu.Lock()
	t.snap.Buttons[id].Presses++
	t.snap.Buttons[id].LastPress = at
	t.mu.Unlock()
}

// SetLED records the state of one LED.
func (t *Tracker) SetLED(st led.State) {
	if !st.ID.Valid() {
		return
	}
	t.mu.Lock()
	t.snap.LEDs[st.ID] = st
	t.mu.Unlock()
}

// SetLEDs records every LED and the scheduler state at once.
// Called from runLoop on every tick.
func (t *Tracker) SetLEDs(states [led.Count]led.State, blinkRunning bool) {
	t.mu.Lock()
	t.snap.LEDs = states
	t.snap.BlinkRunning = blinkRunning
	t.mu.Unlock()
}

// SetDemo records the demo state machine's state.
func (t *Tracker) SetDemo(s logic.State) {
	t.mu.Lock()
	t.snap.Demo = s
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
