// Package clock abstracts the timers used by the debounce controller and the
// blink scheduler so tests can drive time by hand.
package clock

import "time"

// Timer is a one-shot timer that can be cancelled.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call
	// stopped the timer; false means it already fired or was stopped.
	Stop() bool
}

// Clock is the time source used by the core.
type Clock interface {
	Now() time.Time
	// After delivers the current time on the returned channel after d.
	After(d time.Duration) <-chan time.Time
	// AfterFunc calls f on its own goroutine after d.
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the wall clock.
type Real struct{}

func (Real) Now() time.Time                         { return time.Now() }
func (Real) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
