package led

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/devboard/internal/clock"
	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/gpio"
)

type testBoard struct {
	d    *Driver
	outs [3]*gpio.FakeOutput
	pwm  *gpio.FakePWM
	clk  *clock.Fake
}

// newTestBoard wires LED0..LED2 to boolean outputs and LED3 to a PWM pin.
func newTestBoard(t *testing.T, opts ...Option) *testBoard {
	t.Helper()
	b := &testBoard{
		pwm: &gpio.FakePWM{},
		clk: clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	var channels [Count]Channel
	for i := range b.outs {
		b.outs[i] = &gpio.FakeOutput{}
		channels[i] = Channel{Out: b.outs[i]}
	}
	channels[Led3] = Channel{PWM: b.pwm}

	d, err := Init(channels, append([]Option{WithClock(b.clk)}, opts...)...)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	b.d = d
	t.Cleanup(func() { d.Close() })
	return b
}

// step lets the scheduler run n ticks and waits until it is parked on
// the next one. Only valid while something blinks.
func (b *testBoard) step(n int) {
	for i := 0; i < n; i++ {
		b.clk.BlockUntil(1)
		b.clk.Advance(Tick)
	}
	b.clk.BlockUntil(1)
}

func TestInitDrivesOff(t *testing.T) {
	b := newTestBoard(t)

	for i, o := range b.outs {
		w := o.Writes()
		if len(w) != 1 || w[0] {
			t.Errorf("LED%d: expected a single low write, got %v", i, w)
		}
	}
	if w := b.pwm.Writes(); len(w) != 1 || w[0] != 0 {
		t.Errorf("pwm: expected duty 0, got %v", w)
	}
	if b.d.Running() {
		t.Error("scheduler should be parked after Init")
	}
}

func TestBlinkTwoHz(t *testing.T) {
	b := newTestBoard(t)
	if err := b.d.Blink(Led0, Hz2); err != nil {
		t.Fatalf("Blink: %v", err)
	}

	// 250ms half-period = 8 ticks of 31.25ms.
	b.step(7)
	if n := len(b.outs[0].Writes()); n != 1 {
		t.Fatalf("expected no toggle before 250ms, got %d writes", n)
	}
	b.step(1)
	if !b.outs[0].Level() {
		t.Fatal("expected LED on at 250ms")
	}
	b.step(8)
	if b.outs[0].Level() {
		t.Fatal("expected LED off at 500ms")
	}
	if n := len(b.outs[0].Writes()); n != 3 {
		t.Errorf("expected 3 writes, got %d", n)
	}
}

func TestSixteenHzTogglesEveryTick(t *testing.T) {
	b := newTestBoard(t)
	b.d.Blink(Led1, Hz16)

	b.step(4)
	w := b.outs[1].Writes()
	want := []bool{false, true, false, true, false}
	if len(w) != len(want) {
		t.Fatalf("writes = %v, want %v", w, want)
	}
	for i := range want {
		if w[i] != want[i] {
			t.Fatalf("writes = %v, want %v", w, want)
		}
	}
}

func TestLatestBlinkWins(t *testing.T) {
	b := newTestBoard(t)
	b.d.Blink(Led0, Hz2)
	b.step(3)

	b.d.Blink(Led0, Hz8)
	st, _ := b.d.State(Led0)
	if !st.Blinking || st.Frequency != Hz8 {
		t.Fatalf("state = %+v, want blinking at 8Hz", st)
	}

	// 62.5ms half-period from a fresh phase = 2 ticks.
	b.step(1)
	if n := len(b.outs[0].Writes()); n != 1 {
		t.Fatalf("expected no toggle after 1 tick, got %d writes", n)
	}
	b.step(1)
	if !b.outs[0].Level() {
		t.Error("expected toggle after 2 ticks at 8Hz")
	}
}

func TestBlinkThenSetStaysOff(t *testing.T) {
	b := newTestBoard(t)
	b.d.Blink(Led2, Hz16)
	b.step(3)

	if err := b.d.Set(Led2, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	writes := len(b.outs[2].Writes())

	for i := 0; i < 10; i++ {
		b.clk.Advance(Tick)
	}
	if b.outs[2].Level() {
		t.Error("LED should stay off")
	}
	if n := len(b.outs[2].Writes()); n != writes {
		t.Errorf("expected no writes after Set, got %d more", n-writes)
	}
	st, _ := b.d.State(Led2)
	if st.Blinking || st.On {
		t.Errorf("state = %+v, want idle and off", st)
	}
}

func TestRunningIffBlinking(t *testing.T) {
	b := newTestBoard(t)

	b.d.Blink(Led0, Hz4)
	b.d.Blink(Led1, Hz4)
	if !b.d.Running() {
		t.Fatal("expected running with two blinking LEDs")
	}

	b.d.Toggle(Led0)
	if !b.d.Running() {
		t.Error("Toggle must not stop a blink")
	}

	b.d.Set(Led0, true)
	if !b.d.Running() {
		t.Error("expected running while LED1 blinks")
	}

	b.d.Set(Led1, false)
	if b.d.Running() {
		t.Error("expected parked with nothing blinking")
	}

	// Set on an idle LED leaves the scheduler alone.
	b.d.Set(Led2, true)
	if b.d.Running() {
		t.Error("expected still parked")
	}
}

func TestTickAcrossSuspendIsDiscarded(t *testing.T) {
	b := newTestBoard(t)
	b.d.Blink(Led0, Hz16)
	b.clk.BlockUntil(1)

	b.d.Set(Led0, false)
	b.d.Blink(Led0, Hz16)
	b.clk.Advance(Tick)
	b.clk.BlockUntil(1)

	w := b.outs[0].Writes()
	if len(w) != 2 || w[1] {
		t.Fatalf("stale tick toggled the LED: %v", w)
	}

	b.step(1)
	if !b.outs[0].Level() {
		t.Error("expected first toggle one tick after resume")
	}
}

func TestToggle(t *testing.T) {
	b := newTestBoard(t)

	b.d.Toggle(Led0)
	if !b.outs[0].Level() {
		t.Error("expected on after first toggle")
	}
	b.d.Toggle(Led0)
	if b.outs[0].Level() {
		t.Error("expected off after second toggle")
	}

	b.d.Toggle(Led3)
	if b.pwm.Duty() != MaxDuty {
		t.Errorf("pwm toggle: duty = %d, want %d", b.pwm.Duty(), MaxDuty)
	}
}

func TestPWM(t *testing.T) {
	b := newTestBoard(t)

	if err := b.d.PWM(Led3, 500); err != nil {
		t.Fatalf("PWM: %v", err)
	}
	if b.pwm.Duty() != 500 {
		t.Errorf("duty = %d, want 500", b.pwm.Duty())
	}

	b.d.PWM(Led3, 5000)
	if b.pwm.Duty() != MaxDuty {
		t.Errorf("duty = %d, want clamp to %d", b.pwm.Duty(), MaxDuty)
	}

	err := b.d.PWM(Led0, 100)
	if !errors.Is(err, errcode.InvalidArgument) {
		t.Errorf("PWM on boolean LED: expected invalid_argument, got %v", err)
	}
	if len(b.outs[0].Writes()) != 1 {
		t.Error("rejected PWM should not touch the output")
	}
}

func TestPWMBlinkFlipsFullScale(t *testing.T) {
	b := newTestBoard(t)
	b.d.PWM(Led3, 300)
	b.d.Blink(Led3, Hz16)

	b.step(1)
	if b.pwm.Duty() != 0 {
		t.Errorf("duty = %d, want 0", b.pwm.Duty())
	}
	b.step(1)
	if b.pwm.Duty() != MaxDuty {
		t.Errorf("duty = %d, want %d", b.pwm.Duty(), MaxDuty)
	}

	b.d.PWM(Led3, 250)
	if b.d.Running() {
		t.Error("PWM should stop the blink")
	}
	if b.pwm.Duty() != 250 {
		t.Errorf("duty = %d, want 250", b.pwm.Duty())
	}
}

func TestInvalidArguments(t *testing.T) {
	b := newTestBoard(t)

	for _, id := range []ID{-1, Count} {
		checks := map[string]error{
			"Toggle": b.d.Toggle(id),
			"Set":    b.d.Set(id, true),
			"PWM":    b.d.PWM(id, 1),
			"Blink":  b.d.Blink(id, Hz1),
		}
		for op, err := range checks {
			if !errors.Is(err, errcode.InvalidArgument) {
				t.Errorf("%s(%v): expected invalid_argument, got %v", op, id, err)
			}
		}
		if _, err := b.d.State(id); !errors.Is(err, errcode.InvalidArgument) {
			t.Errorf("State(%v): expected invalid_argument, got %v", id, err)
		}
	}

	b.d.Blink(Led0, Hz2)
	for _, f := range []Frequency{0, 17, 255} {
		if err := b.d.Blink(Led0, f); !errors.Is(err, errcode.InvalidArgument) {
			t.Errorf("Blink(%d Hz): expected invalid_argument, got %v", f, err)
		}
	}
	st, _ := b.d.State(Led0)
	if st.Frequency != Hz2 {
		t.Errorf("rejected Blink changed frequency to %d", st.Frequency)
	}
}

func TestChangeHandler(t *testing.T) {
	var changes []State
	b := newTestBoard(t, WithChangeHandler(func(s State) {
		changes = append(changes, s)
	}))

	b.d.Blink(Led1, Hz16)
	b.step(2)
	b.d.Set(Led1, true)

	if len(changes) != 2 {
		t.Fatalf("expected 2 changes (ticks are not reported), got %d", len(changes))
	}
	if !changes[0].Blinking || changes[0].Frequency != Hz16 {
		t.Errorf("first change = %+v", changes[0])
	}
	if changes[1].Blinking || !changes[1].On {
		t.Errorf("second change = %+v", changes[1])
	}
}

func TestChangeHandlerOrderedUnderContention(t *testing.T) {
	var changes []State // handler calls are serialised
	b := newTestBoard(t, WithChangeHandler(func(s State) {
		changes = append(changes, s)
	}))

	const perWorker = 200
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				b.d.Toggle(Led0)
			}
		}()
	}
	wg.Wait()

	if len(changes) != 2*perWorker {
		t.Fatalf("expected %d changes, got %d", 2*perWorker, len(changes))
	}
	// Every toggle flips the level, so reports in order must alternate.
	for i, c := range changes {
		if want := i%2 == 0; c.On != want {
			t.Fatalf("change %d: On=%v, want %v (reports out of order)", i, c.On, want)
		}
	}
	st, _ := b.d.State(Led0)
	if last := changes[len(changes)-1]; last != st {
		t.Errorf("last report %+v does not match final state %+v", last, st)
	}
}

func TestInitErrors(t *testing.T) {
	full := func() [Count]Channel {
		var c [Count]Channel
		for i := range c {
			c[i] = Channel{Out: &gpio.FakeOutput{}}
		}
		return c
	}

	t.Run("missing", func(t *testing.T) {
		c := full()
		c[Led2] = Channel{}
		_, err := Init(c)
		if errcode.Of(err) != errcode.NotReady {
			t.Errorf("expected not_ready, got %v", err)
		}
		var ie *errcode.InitError
		if !errors.As(err, &ie) || ie.Channel != "LED2" {
			t.Errorf("expected InitError for LED2, got %v", err)
		}
	})

	t.Run("both outputs", func(t *testing.T) {
		c := full()
		c[Led1].PWM = &gpio.FakePWM{}
		_, err := Init(c)
		if errcode.Of(err) != errcode.InvalidArgument {
			t.Errorf("expected invalid_argument, got %v", err)
		}
	})

	t.Run("write fails", func(t *testing.T) {
		c := full()
		boom := errors.New("line busy")
		c[Led0].Out.(*gpio.FakeOutput).WriteError = boom
		_, err := Init(c)
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped write error, got %v", err)
		}
	})
}

func TestClose(t *testing.T) {
	b := newTestBoard(t)
	b.d.Blink(Led0, Hz4)
	b.clk.BlockUntil(1)

	if err := b.d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if b.d.Running() {
		t.Error("scheduler should stop on Close")
	}
	if err := b.d.Set(Led0, true); !errors.Is(err, errcode.NotReady) {
		t.Errorf("Set after Close: expected not_ready, got %v", err)
	}
	if err := b.d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestHalfPeriod(t *testing.T) {
	tests := []struct {
		f    Frequency
		want time.Duration
	}{
		{Hz1, 500 * time.Millisecond},
		{Hz2, 250 * time.Millisecond},
		{Hz4, 125 * time.Millisecond},
		{Frequency(10), 50 * time.Millisecond},
		{Hz16, 31250 * time.Microsecond},
	}
	for _, tt := range tests {
		if got := HalfPeriod(tt.f); got != tt.want {
			t.Errorf("HalfPeriod(%d) = %v, want %v", tt.f, got, tt.want)
		}
	}
	if Tick != HalfPeriod(MaxFrequency) {
		t.Errorf("Tick = %v, want %v", Tick, HalfPeriod(MaxFrequency))
	}
}

func TestStateMode(t *testing.T) {
	tests := []struct {
		st   State
		want string
	}{
		{State{}, "off"},
		{State{On: true, Duty: MaxDuty}, "on"},
		{State{PWM: true, Duty: 400, On: true}, "pwm"},
		{State{PWM: true}, "pwm"},
		{State{Blinking: true, Frequency: Hz2}, "blink"},
		{State{PWM: true, Blinking: true, Frequency: Hz2}, "blink"},
	}
	for _, tt := range tests {
		if got := tt.st.Mode(); got != tt.want {
			t.Errorf("%+v.Mode() = %q, want %q", tt.st, got, tt.want)
		}
	}
}
