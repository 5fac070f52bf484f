package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the default debounce window.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces a burst of Trigger calls into one callback that runs
// once the burst has been quiet for the debounce duration.
type Debouncer struct {
	duration time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	seq      uint64
}

// NewDebouncer creates a Debouncer. A zero duration means
// DefaultDebounceDuration.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration <= 0 {
		duration = DefaultDebounceDuration
	}
	return &Debouncer{duration: duration}
}

// Trigger (re)schedules callback. Only the callback from the latest Trigger
// runs.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		// A timer that fired while a newer Trigger was stopping it must not run.
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			callback()
		}
	})
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Duration returns the debounce window.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
