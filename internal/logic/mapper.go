package logic

import (
	"github.com/sweeney/devboard/internal/button"
	"github.com/sweeney/devboard/internal/led"
)

// BlinkSequence is the rate sequence BTN1 cycles LED1 through before
// switching it off.
var BlinkSequence = []led.Frequency{led.Hz1, led.Hz2, led.Hz4, led.Hz8, led.Hz16}

// DutySteps is the brightness sequence BTN2 steps LED3 through.
var DutySteps = []uint16{0, 250, 500, 750, 1000}

// DimmerLED is the PWM LED stepped by BTN2.
const DimmerLED = led.Led3

// Mapper turns presses into LED actions:
//
//	BTN0  toggle LED0
//	BTN1  cycle LED1 through BlinkSequence, then off
//	BTN2  step DimmerLED through DutySteps
//	BTN3  everything off
type Mapper struct {
	blink int // index into BlinkSequence; -1 = off
	duty  int // index into DutySteps
}

// NewMapper creates a Mapper with every LED assumed off.
func NewMapper() *Mapper {
	return &Mapper{blink: -1}
}

// Press returns the actions for a press of id.
func (m *Mapper) Press(id button.ID) []Action {
	switch id {
	case button.Button0:
		return []Action{Toggle(led.Led0)}
	case button.Button1:
		m.blink++
		if m.blink == len(BlinkSequence) {
			m.blink = -1
			return []Action{Set(led.Led1, false)}
		}
		return []Action{Blink(led.Led1, BlinkSequence[m.blink])}
	case button.Button2:
		m.duty = (m.duty + 1) % len(DutySteps)
		return []Action{PWM(DimmerLED, DutySteps[m.duty])}
	case button.Button3:
		m.blink = -1
		m.duty = 0
		actions := make([]Action, 0, led.Count)
		for i := led.ID(0); i < led.Count; i++ {
			actions = append(actions, Set(i, false))
		}
		return actions
	}
	return nil
}
