package gpio

import (
	"fmt"
	"sync"
)

// FakeInput is a test double for a button line. The level is set by the
// test; Fire delivers a rising edge to the registered handler.
type FakeInput struct {
	mu      sync.Mutex
	level   bool
	handler func()
	reads   int

	// ReadError, if set, will be returned by Get()
	ReadError error

	// WatchError, if set, will be returned by Watch()
	WatchError error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeInput creates a FakeInput at low level.
func NewFakeInput() *FakeInput {
	return &FakeInput{}
}

// SetLevel sets the electrical level returned by Get.
func (f *FakeInput) SetLevel(high bool) {
	f.mu.Lock()
	f.level = high
	f.mu.Unlock()
}

// Get returns the current level.
func (f *FakeInput) Get() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.level, nil
}

// Reads returns how many times Get was called.
func (f *FakeInput) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Watch registers the edge handler.
func (f *FakeInput) Watch(fn func()) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WatchError != nil {
		return nil, f.WatchError
	}
	if f.handler != nil {
		return nil, ErrWatched
	}
	f.handler = fn
	return func() {
		f.mu.Lock()
		f.handler = nil
		f.mu.Unlock()
	}, nil
}

// Watched reports whether a handler is registered.
func (f *FakeInput) Watched() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handler != nil
}

// Fire delivers one rising edge without changing the level.
// The handler runs on the caller's goroutine.
func (f *FakeInput) Fire() {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Rise drives the line high and fires an edge.
func (f *FakeInput) Rise() {
	f.SetLevel(true)
	f.Fire()
}

// Close marks the input as closed.
func (f *FakeInput) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// FakeOutput records every value written to it.
type FakeOutput struct {
	mu     sync.Mutex
	level  bool
	writes []bool

	// WriteError, if set, will be returned by Set()
	WriteError error

	// Closed tracks if Close was called
	Closed bool
}

// Set records high as the new level.
func (f *FakeOutput) Set(high bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.level = high
	f.writes = append(f.writes, high)
	return nil
}

// Level returns the last value written.
func (f *FakeOutput) Level() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// Writes returns a copy of every value written.
func (f *FakeOutput) Writes() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.writes))
	copy(out, f.writes)
	return out
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// FakePWM records every duty cycle written to it.
type FakePWM struct {
	mu     sync.Mutex
	duty   uint16
	writes []uint16

	// WriteError, if set, will be returned by SetDuty()
	WriteError error

	// Closed tracks if Close was called
	Closed bool
}

// SetDuty records duty, clamped to DutyScale like the real pin.
func (f *FakePWM) SetDuty(duty uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	if duty > DutyScale {
		duty = DutyScale
	}
	f.duty = duty
	f.writes = append(f.writes, duty)
	return nil
}

// Duty returns the last duty written.
func (f *FakePWM) Duty() uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duty
}

// Writes returns a copy of every duty written.
func (f *FakePWM) Writes() []uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint16, len(f.writes))
	copy(out, f.writes)
	return out
}

// Close marks the pin as closed.
func (f *FakePWM) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// FakeChip hands out fake lines and remembers them by offset or name.
// Requesting the same line twice returns the same fake.
type FakeChip struct {
	Inputs  map[int]*FakeInput
	Outputs map[int]*FakeOutput
	PWMs    map[string]*FakePWM

	// Per-line request failures.
	InputErrors  map[int]error
	OutputErrors map[int]error
	PWMErrors    map[string]error

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeChip creates an empty FakeChip.
func NewFakeChip() *FakeChip {
	return &FakeChip{
		Inputs:       make(map[int]*FakeInput),
		Outputs:      make(map[int]*FakeOutput),
		PWMs:         make(map[string]*FakePWM),
		InputErrors:  make(map[int]error),
		OutputErrors: make(map[int]error),
		PWMErrors:    make(map[string]error),
	}
}

func (c *FakeChip) RequestInput(line int, pullDown bool) (Input, error) {
	if err := c.InputErrors[line]; err != nil {
		return nil, fmt.Errorf("request input line %d: %w", line, err)
	}
	in, ok := c.Inputs[line]
	if !ok {
		in = NewFakeInput()
		c.Inputs[line] = in
	}
	return in, nil
}

func (c *FakeChip) RequestOutput(line int) (Output, error) {
	if err := c.OutputErrors[line]; err != nil {
		return nil, fmt.Errorf("request output line %d: %w", line, err)
	}
	out, ok := c.Outputs[line]
	if !ok {
		out = &FakeOutput{}
		c.Outputs[line] = out
	}
	return out, nil
}

func (c *FakeChip) RequestPWM(name string, hz int) (PWM, error) {
	if err := c.PWMErrors[name]; err != nil {
		return nil, fmt.Errorf("pwm %s: %w", name, err)
	}
	p, ok := c.PWMs[name]
	if !ok {
		p = &FakePWM{}
		c.PWMs[name] = p
	}
	return p, nil
}

// Close marks the chip as closed.
func (c *FakeChip) Close() error {
	c.Closed = true
	return nil
}
