// Package gpio provides the digital inputs, digital outputs and PWM pins the
// board is wired to. The real implementation uses the Linux GPIO character
// device for plain lines and periph.io for PWM pins.
// The fake implementation allows testing without hardware.
package gpio

import "errors"

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

// Consumer is the label the kernel shows for lines held by this process.
const Consumer = "devboard"

// DutyScale is the full-scale value accepted by PWM.SetDuty (per-mille).
const DutyScale = 1000

// ErrWatched is returned when a second edge handler is attached to a line.
var ErrWatched = errors.New("gpio: line already watched")

// Input is a digital input line configured for rising-edge events.
type Input interface {
	// Get returns the electrical level; true = high.
	Get() (bool, error)

	// Watch registers fn to run on every rising edge. fn runs on the
	// line's event goroutine and must not block. cancel detaches fn.
	Watch(fn func()) (cancel func(), err error)

	// Close releases the line.
	Close() error
}

// Output is a boolean output line.
type Output interface {
	Set(high bool) error
	Close() error
}

// PWM is a duty-cycle output.
type PWM interface {
	// SetDuty sets the duty cycle in [0, DutyScale]; larger values clamp.
	SetDuty(duty uint16) error
	Close() error
}

// Chip hands out lines. Lines are independent of the chip once requested
// and must be closed by the caller.
type Chip interface {
	RequestInput(line int, pullDown bool) (Input, error)
	RequestOutput(line int) (Output, error)
	RequestPWM(name string, hz int) (PWM, error)
	Close() error
}
