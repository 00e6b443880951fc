package led

import (
	"log"
	"math/bits"

	"github.com/sweeney/devboard/internal/metrics"
)

// resumeLocked wakes the scheduler if it is parked. Each resume starts a
// new epoch so a tick that began before a suspend is thrown away.
func (d *Driver) resumeLocked() {
	metrics.SetBlinkActive(bits.OnesCount32(d.active))
	if d.running {
		return
	}
	d.running = true
	d.resumes++
	metrics.SetBlinkWorkerRunning(true)
	d.cond.Signal()
}

// haltLocked removes ch from the blink set, parking the scheduler when
// the set becomes empty.
func (d *Driver) haltLocked(ch *ledChannel) {
	if !ch.active {
		return
	}
	ch.active = false
	ch.freq = 0
	ch.offset = 0
	d.active &^= 1 << uint(ch.id)
	metrics.SetBlinkActive(bits.OnesCount32(d.active))
	if d.active == 0 && d.running {
		d.running = false
		metrics.SetBlinkWorkerRunning(false)
	}
}

// Running reports whether the scheduler is ticking. It is true exactly
// when at least one LED blinks.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *Driver) run() {
	defer close(d.done)

	d.mu.Lock()
	for {
		for !d.running && !d.closed {
			d.cond.Wait()
		}
		if d.closed {
			d.mu.Unlock()
			return
		}
		epoch := d.resumes
		d.mu.Unlock()

		select {
		case <-d.clk.After(Tick):
		case <-d.quit:
			return
		}

		d.mu.Lock()
		if d.running && d.resumes == epoch {
			d.tickLocked()
		}
	}
}

// tickLocked advances every blinking LED by one tick and flips those
// whose half-period has elapsed.
func (d *Driver) tickLocked() {
	for i, ch := range d.ch {
		if d.active&(1<<uint(i)) == 0 {
			continue
		}
		ch.offset += Tick
		if ch.offset < ch.half {
			continue
		}
		ch.offset = 0
		if err := d.flipLocked(ch); err != nil {
			log.Printf("led: blink write failed: %v", err)
		}
	}
}
