// Package logic contains the application behaviour on top of the buttons
// and LEDs: what a press does, and the LED demo state machine.
// This package has NO hardware, MQTT or OS dependencies. It returns
// Actions; Apply runs them against an LED driver.
package logic

import (
	"fmt"

	"github.com/sweeney/devboard/internal/led"
)

// State represents the state of the demo state machine.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// ActionKind is an LED operation.
type ActionKind string

const (
	ActionSet    ActionKind = "set"
	ActionToggle ActionKind = "toggle"
	ActionBlink  ActionKind = "blink"
	ActionPWM    ActionKind = "pwm"
)

// Action is one LED operation to perform.
type Action struct {
	Kind      ActionKind
	LED       led.ID
	On        bool          // ActionSet
	Frequency led.Frequency // ActionBlink
	Duty      uint16        // ActionPWM
}

func (a Action) String() string {
	switch a.Kind {
	case ActionSet:
		if a.On {
			return fmt.Sprintf("%s on", a.LED)
		}
		return fmt.Sprintf("%s off", a.LED)
	case ActionBlink:
		return fmt.Sprintf("%s blink %dHz", a.LED, a.Frequency)
	case ActionPWM:
		return fmt.Sprintf("%s pwm %d", a.LED, a.Duty)
	default:
		return fmt.Sprintf("%s %s", a.LED, a.Kind)
	}
}

// Set builds an ActionSet.
func Set(id led.ID, on bool) Action {
	return Action{Kind: ActionSet, LED: id, On: on}
}

// Toggle builds an ActionToggle.
func Toggle(id led.ID) Action {
	return Action{Kind: ActionToggle, LED: id}
}

// Blink builds an ActionBlink.
func Blink(id led.ID, f led.Frequency) Action {
	return Action{Kind: ActionBlink, LED: id, Frequency: f}
}

// PWM builds an ActionPWM.
func PWM(id led.ID, duty uint16) Action {
	return Action{Kind: ActionPWM, LED: id, Duty: duty}
}
