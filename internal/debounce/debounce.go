// Package debounce coalesces bursts of triggers into a single callback that
// runs after a quiet period. Every Trigger restarts the timer, so the
// callback fires only once no trigger has arrived for the full delay.
package debounce

import (
	"sync"
	"time"
)

// afterFunc is swapped out by tests to capture scheduled callbacks.
var afterFunc = time.AfterFunc

type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
	gen   uint64
}

func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn to run after the quiet delay, replacing any pending
// schedule. The generation counter keeps a timer that already fired from
// delivering a stale callback after a newer Trigger or a Stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = afterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	fn := d.fn
	d.mu.Unlock()
	// Run outside the lock so fn may Trigger again.
	fn()
}

// Stop cancels any pending callback. The debouncer stays usable; a later
// Trigger schedules again.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
