// Package button debounces the board's push buttons and keeps a sticky
// pressed flag per button for the application to poll.
//
// A rising edge arms a one-shot timer for the debounce window; further
// edges inside the window restart it. When the timer expires the line is
// read once and, if high, the button's pressed flag is set. The flag stays
// set until the application clears it.
package button

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/devboard/internal/clock"
	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/gpio"
	"github.com/sweeney/devboard/internal/metrics"
)

// DefaultDebounce is the debounce window.
const DefaultDebounce = 20 * time.Millisecond

type channel struct {
	id     ID
	in     gpio.Input
	mu     sync.Mutex // guards cancel, timer, gen, closed
	cancel func()
	timer  clock.Timer
	gen    uint64
	closed bool

	pressed atomic.Bool
}

// Controller owns the debounce timers and pressed flags of every button.
type Controller struct {
	window  time.Duration
	clk     clock.Clock
	onPress func(ID, time.Time)

	ch [Count]*channel
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.window = d }
}

// WithClock replaces the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clk = clk }
}

// WithPressHandler sets a callback run after a press is latched.
// It runs on the timer goroutine and must not block.
func WithPressHandler(fn func(ID, time.Time)) Option {
	return func(c *Controller) { c.onPress = fn }
}

// Init registers an edge handler on every input. The first input that is
// missing or refuses the handler aborts initialisation; handlers already
// registered are removed again.
func Init(inputs [Count]gpio.Input, opts ...Option) (*Controller, error) {
	c := &Controller{
		window: DefaultDebounce,
		clk:    clock.Real{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.window <= 0 {
		return nil, fmt.Errorf("debounce window %v: %w", c.window, errcode.InvalidArgument)
	}

	for i, in := range inputs {
		id := ID(i)
		if in == nil {
			return nil, errcode.Init(id.String(), "input", errcode.NotReady)
		}
		c.ch[i] = &channel{id: id, in: in}
	}

	// Every channel exists before the first handler can run.
	for _, ch := range c.ch {
		cancel, err := ch.in.Watch(func() { c.arm(ch) })
		if err != nil {
			c.Close()
			return nil, errcode.Init(ch.id.String(), "watch edges", err)
		}
		ch.mu.Lock()
		ch.cancel = cancel
		ch.mu.Unlock()
	}
	return c, nil
}

// Window returns the debounce window.
func (c *Controller) Window() time.Duration {
	return c.window
}

// OnEdge handles a batch of rising edges. It only (re)arms timers and never
// touches the lines, so it is safe to call from the line event goroutine.
func (c *Controller) OnEdge(set Set) {
	for i, ch := range c.ch {
		if ch == nil || !set.Has(ID(i)) {
			continue
		}
		c.arm(ch)
	}
}

func (c *Controller) arm(ch *channel) {
	label := ch.id.String()
	metrics.IncButtonEdge(label)

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return
	}
	ch.gen++
	gen := ch.gen
	if ch.timer != nil && ch.timer.Stop() {
		metrics.IncButtonRearm(label)
	}
	ch.timer = c.clk.AfterFunc(c.window, func() { c.expire(ch, gen) })
}

// expire runs when a debounce window closes. A timer that lost the race
// with Stop still fires; the generation check drops it.
func (c *Controller) expire(ch *channel, gen uint64) {
	ch.mu.Lock()
	if ch.closed || gen != ch.gen {
		ch.mu.Unlock()
		return
	}
	ch.timer = nil
	ch.mu.Unlock()

	high, err := ch.in.Get()
	if err != nil {
		log.Printf("button: %s read failed: %v", ch.id, err)
		return
	}
	label := ch.id.String()
	if !high {
		metrics.IncButtonBounce(label)
		return
	}
	ch.pressed.Store(true)
	metrics.IncButtonPress(label)
	if c.onPress != nil {
		c.onPress(ch.id, c.clk.Now())
	}
}

func (c *Controller) lookup(id ID) *channel {
	if !id.Valid() {
		return nil
	}
	return c.ch[id]
}

// IsPressed returns the instantaneous level of the button's line,
// bypassing the debounce. Unknown buttons and read errors report false.
func (c *Controller) IsPressed(id ID) bool {
	ch := c.lookup(id)
	if ch == nil {
		return false
	}
	high, err := ch.in.Get()
	if err != nil {
		return false
	}
	return high
}

// CheckPressed returns the pressed flag without clearing it.
func (c *Controller) CheckPressed(id ID) bool {
	ch := c.lookup(id)
	if ch == nil {
		return false
	}
	return ch.pressed.Load()
}

// CheckAndClearPressed returns the pressed flag and clears it in one step.
// A press latched concurrently is seen either here or by the next call,
// never lost.
func (c *Controller) CheckAndClearPressed(id ID) bool {
	ch := c.lookup(id)
	if ch == nil {
		return false
	}
	return ch.pressed.Swap(false)
}

// ClearPressed clears the pressed flag.
func (c *Controller) ClearPressed(id ID) {
	if ch := c.lookup(id); ch != nil {
		ch.pressed.Store(false)
	}
}

// Close detaches the edge handlers and cancels pending windows.
// The inputs themselves are left open.
func (c *Controller) Close() error {
	for _, ch := range c.ch {
		if ch == nil {
			continue
		}
		ch.mu.Lock()
		ch.closed = true
		if ch.timer != nil {
			ch.timer.Stop()
			ch.timer = nil
		}
		cancel := ch.cancel
		ch.cancel = nil
		ch.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	}
	return nil
}
