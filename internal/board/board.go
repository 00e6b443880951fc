package board

import (
	"fmt"
	"io"

	"github.com/sweeney/devboard/internal/button"
	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/gpio"
	"github.com/sweeney/devboard/internal/led"
)

// Hardware holds every requested line, indexed by button and LED ID.
type Hardware struct {
	Buttons [button.Count]gpio.Input
	LEDs    [led.Count]led.Channel

	lines []io.Closer
}

// Open requests every line in cfg from chip. On the first failure the
// lines already requested are released and an InitError naming the
// channel is returned.
func Open(cfg Config, chip gpio.Chip) (*Hardware, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hw := &Hardware{}

	for i, b := range cfg.Buttons {
		id := button.ID(i)
		in, err := chip.RequestInput(b.Line, b.PullDown)
		if err != nil {
			hw.Close()
			return nil, errcode.Init(id.String(), "request line", err)
		}
		hw.Buttons[i] = in
		hw.lines = append(hw.lines, in)
	}

	for i, l := range cfg.LEDs {
		id := led.ID(i)
		if l.PWM != "" {
			p, err := chip.RequestPWM(l.PWM, l.PWMHz)
			if err != nil {
				hw.Close()
				return nil, errcode.Init(id.String(), "request pwm", err)
			}
			hw.LEDs[i] = led.Channel{PWM: p}
			hw.lines = append(hw.lines, p)
			continue
		}
		out, err := chip.RequestOutput(l.Line)
		if err != nil {
			hw.Close()
			return nil, errcode.Init(id.String(), "request line", err)
		}
		hw.LEDs[i] = led.Channel{Out: out}
		hw.lines = append(hw.lines, out)
	}
	return hw, nil
}

// Close releases every line, most recent first.
func (hw *Hardware) Close() error {
	var errs []error
	for i := len(hw.lines) - 1; i >= 0; i-- {
		if err := hw.lines[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	hw.lines = nil
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
