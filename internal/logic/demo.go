package logic

import "github.com/sweeney/devboard/internal/led"

// DemoThreshold is how many runs the demo stays in a state.
const DemoThreshold = 500

// Demo alternates LED0 between on and off, switching state after more
// than DemoThreshold runs. Each state's entry action drives the LED.
type Demo struct {
	state State
	count int
}

// NewDemo creates a demo in StateOn.
func NewDemo() *Demo {
	return &Demo{state: StateOn}
}

// Start returns the entry action of the initial state.
func (d *Demo) Start() Action {
	return d.entry()
}

// Step runs the current state once. When the state changes it returns
// the entry action of the new state and true.
func (d *Demo) Step() (Action, bool) {
	if d.count <= DemoThreshold {
		d.count++
		return Action{}, false
	}
	d.count = 0
	if d.state == StateOn {
		d.state = StateOff
	} else {
		d.state = StateOn
	}
	return d.entry(), true
}

// State returns the current state.
func (d *Demo) State() State {
	return d.state
}

func (d *Demo) entry() Action {
	return Set(led.Led0, d.state == StateOn)
}
