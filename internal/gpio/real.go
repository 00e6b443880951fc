//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// RealChip requests lines from a Linux GPIO character device.
type RealChip struct {
	chip *gpiocdev.Chip
}

// NewRealChip opens the named chip, e.g. "gpiochip0".
func NewRealChip(name string) (*RealChip, error) {
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealChip{chip: chip}, nil
}

// RequestInput requests line as an input reporting rising edges.
// The edge handler runs on the gpiocdev event goroutine.
func (c *RealChip) RequestInput(line int, pullDown bool) (Input, error) {
	in := &realInput{offset: line}
	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(in.handle),
	}
	if pullDown {
		opts = append(opts, gpiocdev.WithPullDown)
	}
	l, err := c.chip.RequestLine(line, opts...)
	if err != nil {
		return nil, fmt.Errorf("request input line %d: %w", line, err)
	}
	in.line = l
	return in, nil
}

// RequestOutput requests line as an output driven low.
func (c *RealChip) RequestOutput(line int) (Output, error) {
	l, err := c.chip.RequestLine(line, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output line %d: %w", line, err)
	}
	return &realOutput{offset: line, line: l}, nil
}

// RequestPWM opens a periph.io PWM pin by name, e.g. "GPIO18".
func (c *RealChip) RequestPWM(name string, hz int) (PWM, error) {
	return openPWM(name, hz)
}

// Close releases the chip. Lines already requested stay valid.
func (c *RealChip) Close() error {
	if err := c.chip.Close(); err != nil {
		return fmt.Errorf("close chip: %w", err)
	}
	return nil
}

type realInput struct {
	offset int
	line   *gpiocdev.Line
	fn     atomic.Pointer[func()]
}

func (in *realInput) handle(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventRisingEdge {
		return
	}
	if fn := in.fn.Load(); fn != nil {
		(*fn)()
	}
}

func (in *realInput) Get() (bool, error) {
	v, err := in.line.Value()
	if err != nil {
		return false, fmt.Errorf("read line %d: %w", in.offset, err)
	}
	return v != 0, nil
}

func (in *realInput) Watch(fn func()) (func(), error) {
	if !in.fn.CompareAndSwap(nil, &fn) {
		return nil, fmt.Errorf("line %d: %w", in.offset, ErrWatched)
	}
	return func() { in.fn.Store(nil) }, nil
}

func (in *realInput) Close() error {
	in.fn.Store(nil)
	if err := in.line.Close(); err != nil {
		return fmt.Errorf("close input line %d: %w", in.offset, err)
	}
	return nil
}

type realOutput struct {
	offset int
	line   *gpiocdev.Line
}

func (o *realOutput) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("write line %d: %w", o.offset, err)
	}
	return nil
}

// Close returns the pin to input with pull-down (the Pi boot default) so
// an LED is not left lit across a restart.
func (o *realOutput) Close() error {
	var errs []error
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure line %d: %w", o.offset, err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output line %d: %w", o.offset, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
