// Package led drives the board's LEDs. Each LED is either a boolean GPIO
// line or a PWM pin and can be set, toggled, dimmed or left blinking.
// Blinking LEDs share one scheduler goroutine which is parked while
// nothing blinks.
package led

import (
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/devboard/internal/clock"
	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/gpio"
	"github.com/sweeney/devboard/internal/metrics"
)

// Channel is the hardware behind one LED. Exactly one of Out and PWM is set.
type Channel struct {
	Out gpio.Output
	PWM gpio.PWM
}

// State is a point-in-time view of one LED.
type State struct {
	ID        ID
	PWM       bool   // driven by a PWM pin
	On        bool   // level, or duty > 0 for PWM channels
	Duty      uint16 // per-mille; 0 or MaxDuty for boolean channels
	Blinking  bool
	Frequency Frequency // 0 unless blinking
}

type ledChannel struct {
	id  ID
	out gpio.Output
	pwm gpio.PWM

	duty   uint16
	freq   Frequency
	half   time.Duration
	offset time.Duration
	active bool
}

func (ch *ledChannel) state() State {
	return State{
		ID:        ch.id,
		PWM:       ch.pwm != nil,
		On:        ch.duty > 0,
		Duty:      ch.duty,
		Blinking:  ch.active,
		Frequency: ch.freq,
	}
}

// Driver owns the LED outputs and the blink scheduler. All output writes,
// from callers and from the scheduler, happen under one mutex.
type Driver struct {
	clk      clock.Clock
	onChange func(State)

	mu      sync.Mutex
	cond    *sync.Cond
	ch      [Count]*ledChannel
	active  uint32 // bit per blinking LED
	running bool
	resumes uint64
	closed  bool
	seq     uint64 // explicit operations so far

	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	notified   uint64 // last seq handed to onChange

	quit chan struct{}
	done chan struct{}
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock replaces the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(d *Driver) { d.clk = clk }
}

// WithChangeHandler sets a callback run after every explicit operation.
// Calls arrive one at a time in the order the operations took effect.
// Scheduler toggles are not reported. fn may read the Driver but must not
// change it.
func WithChangeHandler(fn func(State)) Option {
	return func(d *Driver) { d.onChange = fn }
}

// Init drives every LED off and starts the scheduler (parked).
// The first channel that is missing or cannot be written aborts.
func Init(channels [Count]Channel, opts ...Option) (*Driver, error) {
	d := &Driver{clk: clock.Real{}}
	for _, opt := range opts {
		opt(d)
	}

	for i, c := range channels {
		id := ID(i)
		ch := &ledChannel{id: id, out: c.Out, pwm: c.PWM}
		switch {
		case c.Out != nil && c.PWM != nil:
			return nil, errcode.Init(id.String(), "output", errcode.InvalidArgument)
		case c.Out != nil:
			if err := c.Out.Set(false); err != nil {
				return nil, errcode.Init(id.String(), "drive low", err)
			}
		case c.PWM != nil:
			if err := c.PWM.SetDuty(0); err != nil {
				return nil, errcode.Init(id.String(), "set duty", err)
			}
		default:
			return nil, errcode.Init(id.String(), "output", errcode.NotReady)
		}
		d.ch[i] = ch
	}

	d.cond = sync.NewCond(&d.mu)
	d.notifyCond = sync.NewCond(&d.notifyMu)
	d.quit = make(chan struct{})
	d.done = make(chan struct{})
	metrics.SetBlinkActive(0)
	metrics.SetBlinkWorkerRunning(false)
	go d.run()
	return d, nil
}

// lock returns the channel for id with d.mu held.
func (d *Driver) lock(id ID) (*ledChannel, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("led %s: %w", id, errcode.InvalidArgument)
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, fmt.Errorf("led %s: %w", id, errcode.NotReady)
	}
	return d.ch[id], nil
}

// unlock releases d.mu and reports the new state. Each operation takes a
// ticket under d.mu and waits for its turn, so reports never overtake
// each other.
func (d *Driver) unlock(ch *ledChannel) {
	d.seq++
	seq := d.seq
	st := ch.state()
	d.mu.Unlock()
	if d.onChange == nil {
		return
	}

	d.notifyMu.Lock()
	for d.notified != seq-1 {
		d.notifyCond.Wait()
	}
	d.onChange(st)
	d.notified = seq
	d.notifyCond.Broadcast()
	d.notifyMu.Unlock()
}

// writeLocked drives ch to duty. Boolean channels treat any duty as on.
func (d *Driver) writeLocked(ch *ledChannel, duty uint16) error {
	if ch.pwm != nil {
		if err := ch.pwm.SetDuty(duty); err != nil {
			return fmt.Errorf("led %s: %w", ch.id, err)
		}
		ch.duty = duty
		return nil
	}
	on := duty > 0
	if err := ch.out.Set(on); err != nil {
		return fmt.Errorf("led %s: %w", ch.id, err)
	}
	ch.duty = 0
	if on {
		ch.duty = MaxDuty
	}
	return nil
}

// flipLocked inverts the output. PWM channels flip between 0 and MaxDuty.
func (d *Driver) flipLocked(ch *ledChannel) error {
	next := MaxDuty
	if ch.duty > 0 {
		next = 0
	}
	if err := d.writeLocked(ch, next); err != nil {
		return err
	}
	metrics.IncLEDToggle(ch.id.String())
	return nil
}

// Toggle inverts the LED. A blinking LED keeps blinking.
func (d *Driver) Toggle(id ID) error {
	ch, err := d.lock(id)
	if err != nil {
		return err
	}
	err = d.flipLocked(ch)
	d.unlock(ch)
	return err
}

// Set stops any blink and drives the LED on or off. PWM channels go to
// full or zero duty.
func (d *Driver) Set(id ID, on bool) error {
	ch, err := d.lock(id)
	if err != nil {
		return err
	}
	d.haltLocked(ch)
	var duty uint16
	if on {
		duty = MaxDuty
	}
	err = d.writeLocked(ch, duty)
	d.unlock(ch)
	return err
}

// PWM stops any blink and sets the duty cycle, clamped to MaxDuty.
// Boolean channels reject it.
func (d *Driver) PWM(id ID, duty uint16) error {
	ch, err := d.lock(id)
	if err != nil {
		return err
	}
	if ch.pwm == nil {
		d.mu.Unlock()
		return fmt.Errorf("led %s: pwm on boolean output: %w", id, errcode.InvalidArgument)
	}
	if duty > MaxDuty {
		duty = MaxDuty
	}
	d.haltLocked(ch)
	err = d.writeLocked(ch, duty)
	d.unlock(ch)
	return err
}

// Blink starts the LED toggling at f, or changes the rate of an LED that
// is already blinking. The phase restarts either way.
func (d *Driver) Blink(id ID, f Frequency) error {
	if !f.Valid() {
		return fmt.Errorf("led %s: blink %d Hz: %w", id, f, errcode.InvalidArgument)
	}
	ch, err := d.lock(id)
	if err != nil {
		return err
	}
	ch.freq = f
	ch.half = HalfPeriod(f)
	ch.offset = 0
	ch.active = true
	d.active |= 1 << uint(id)
	d.resumeLocked()
	d.unlock(ch)
	return nil
}

// State returns the LED's current state.
func (d *Driver) State(id ID) (State, error) {
	if !id.Valid() {
		return State{}, fmt.Errorf("led %s: %w", id, errcode.InvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ch[id].state(), nil
}

// States returns every LED's state.
func (d *Driver) States() [Count]State {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out [Count]State
	for i, ch := range d.ch {
		out[i] = ch.state()
	}
	return out
}

// Close stops the scheduler. Outputs keep their last level; releasing
// the lines is up to their owner.
func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.active = 0
	d.running = false
	for _, ch := range d.ch {
		ch.active = false
		ch.freq = 0
	}
	close(d.quit)
	d.cond.Broadcast()
	d.mu.Unlock()

	<-d.done
	metrics.SetBlinkActive(0)
	metrics.SetBlinkWorkerRunning(false)
	return nil
}

// Mode summarises the state as "blink", "pwm", "on" or "off".
func (s State) Mode() string {
	switch {
	case s.Blinking:
		return "blink"
	case s.PWM:
		return "pwm"
	case s.On:
		return "on"
	default:
		return "off"
	}
}
