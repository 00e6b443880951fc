//go:build !linux

package gpio

import "errors"

// RealChip is not available on non-Linux platforms.
type RealChip struct{}

// NewRealChip returns an error on non-Linux platforms.
func NewRealChip(name string) (*RealChip, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// RequestInput is not implemented on non-Linux platforms.
func (c *RealChip) RequestInput(line int, pullDown bool) (Input, error) {
	return nil, errors.New("gpio: not supported")
}

// RequestOutput is not implemented on non-Linux platforms.
func (c *RealChip) RequestOutput(line int) (Output, error) {
	return nil, errors.New("gpio: not supported")
}

// RequestPWM opens a periph.io PWM pin; periph works without gpiocdev.
func (c *RealChip) RequestPWM(name string, hz int) (PWM, error) {
	return openPWM(name, hz)
}

// Close is not implemented on non-Linux platforms.
func (c *RealChip) Close() error {
	return nil
}
