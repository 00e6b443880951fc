package led

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sweeney/devboard/internal/gpio"
)

// ID names one of the board's LEDs.
type ID int

const (
	Led0 ID = iota
	Led1
	Led2
	Led3
)

// Count is the number of LEDs on the board.
const Count = 4

// Valid reports whether id names an LED.
func (id ID) Valid() bool {
	return id >= 0 && id < Count
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("LED(%d)", int(id))
	}
	return "LED" + strconv.Itoa(int(id))
}

// Frequency is a blink rate in Hz.
type Frequency uint8

const (
	Hz1  Frequency = 1
	Hz2  Frequency = 2
	Hz4  Frequency = 4
	Hz8  Frequency = 8
	Hz16 Frequency = 16

	MinFrequency = Hz1
	MaxFrequency = Hz16
)

// Valid reports whether f is a supported blink rate.
func (f Frequency) Valid() bool {
	return f >= MinFrequency && f <= MaxFrequency
}

// MaxDuty is full brightness for PWM channels (per-mille).
const MaxDuty uint16 = gpio.DutyScale

const halfSecond = 500 * time.Millisecond

// Tick is the scheduler period: the half-period of the fastest blink.
const Tick = halfSecond / time.Duration(MaxFrequency)

// HalfPeriod is the time an LED blinking at f spends in each level.
func HalfPeriod(f Frequency) time.Duration {
	return halfSecond / time.Duration(f)
}
