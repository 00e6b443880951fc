package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock for tests. AfterFunc callbacks run
// synchronously inside Advance; After channels are buffered so Advance never
// blocks on a slow reader.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	waiters []*fakeTimer
	changed chan struct{}
}

type fakeTimer struct {
	clk *Fake
	at  time.Time
	seq uint64
	fn  func()
	ch  chan time.Time
}

// NewFake returns a Fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start, changed: make(chan struct{})}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After returns a channel that receives the fake time once d has elapsed.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	f.add(&fakeTimer{at: f.Now().Add(d), ch: ch})
	return ch
}

// AfterFunc schedules fn to run once d has elapsed.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{at: f.Now().Add(d), fn: fn}
	f.add(t)
	return t
}

func (f *Fake) add(t *fakeTimer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t.clk = f
	t.seq = f.seq
	f.waiters = append(f.waiters, t)
	f.notifyLocked()
}

// Stop removes the timer if it has not fired yet.
func (t *fakeTimer) Stop() bool {
	f := t.clk
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.waiters {
		if w == t {
			f.waiters = append(f.waiters[:i], f.waiters[i+1:]...)
			f.notifyLocked()
			return true
		}
	}
	return false
}

// Advance moves time forward by d, firing every timer that falls due in
// deadline order. Time is set to each deadline before its timer fires.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	for {
		t := f.popDueLocked(target)
		if t == nil {
			break
		}
		if t.at.After(f.now) {
			f.now = t.at
		}
		f.mu.Unlock()
		if t.fn != nil {
			t.fn()
		} else {
			t.ch <- t.at
		}
		f.mu.Lock()
	}
	f.now = target
	f.mu.Unlock()
}

func (f *Fake) popDueLocked(target time.Time) *fakeTimer {
	if len(f.waiters) == 0 {
		return nil
	}
	sort.Slice(f.waiters, func(i, j int) bool {
		if f.waiters[i].at.Equal(f.waiters[j].at) {
			return f.waiters[i].seq < f.waiters[j].seq
		}
		return f.waiters[i].at.Before(f.waiters[j].at)
	})
	t := f.waiters[0]
	if t.at.After(target) {
		return nil
	}
	f.waiters = f.waiters[1:]
	f.notifyLocked()
	return t
}

// Pending returns the number of timers that have not fired or been stopped.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}

// BlockUntil waits until exactly n timers are pending. Tests use it to wait
// for a goroutine to park on After before advancing time.
func (f *Fake) BlockUntil(n int) {
	for {
		f.mu.Lock()
		if len(f.waiters) == n {
			f.mu.Unlock()
			return
		}
		ch := f.changed
		f.mu.Unlock()
		<-ch
	}
}

func (f *Fake) notifyLocked() {
	close(f.changed)
	f.changed = make(chan struct{})
}
