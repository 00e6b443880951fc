package gpio

import (
	"fmt"
	"sync"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var (
	hostOnce sync.Once
	hostErr  error
)

// initHost loads the periph.io host drivers once per process.
func initHost() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	return hostErr
}

type periphPWM struct {
	name string
	pin  pgpio.PinIO
	freq physic.Frequency
}

func openPWM(name string, hz int) (PWM, error) {
	if hz <= 0 {
		return nil, fmt.Errorf("pwm %s: invalid frequency %d Hz", name, hz)
	}
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("pwm pin %q not found", name)
	}
	p := &periphPWM{
		name: name,
		pin:  pin,
		freq: physic.Frequency(hz) * physic.Hertz,
	}
	if err := p.SetDuty(0); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *periphPWM) SetDuty(duty uint16) error {
	if duty > DutyScale {
		duty = DutyScale
	}
	d := pgpio.Duty(int64(duty) * int64(pgpio.DutyMax) / DutyScale)
	if err := p.pin.PWM(d, p.freq); err != nil {
		return fmt.Errorf("pwm %s duty %d: %w", p.name, duty, err)
	}
	return nil
}

// Close drives the pin low and halts the PWM peripheral.
func (p *periphPWM) Close() error {
	var errs []error
	if err := p.pin.Out(pgpio.Low); err != nil {
		errs = append(errs, fmt.Errorf("pwm %s low: %w", p.name, err))
	}
	if err := p.pin.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("pwm %s halt: %w", p.name, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
