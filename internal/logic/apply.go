package logic

import (
	"fmt"

	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/led"
)

// Driver is the subset of *led.Driver that actions need.
type Driver interface {
	Set(id led.ID, on bool) error
	Toggle(id led.ID) error
	Blink(id led.ID, f led.Frequency) error
	PWM(id led.ID, duty uint16) error
}

// Apply performs a on d.
func Apply(d Driver, a Action) error {
	switch a.Kind {
	case ActionSet:
		return d.Set(a.LED, a.On)
	case ActionToggle:
		return d.Toggle(a.LED)
	case ActionBlink:
		return d.Blink(a.LED, a.Frequency)
	case ActionPWM:
		return d.PWM(a.LED, a.Duty)
	default:
		return fmt.Errorf("action %q: %w", a.Kind, errcode.Unsupported)
	}
}
