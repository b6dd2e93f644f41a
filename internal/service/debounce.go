package service

import (
	"sync"
	"time"
)

// defaultDebounceWindow is how long local-change checks are held back after
// the last trigger. Editors fire bursts of filesystem events per save; one
// check per burst is enough.
const defaultDebounceWindow = 50 * time.Millisecond

// debouncer coalesces bursts of triggers into a single deferred call of fn.
// Every Trigger resets the window, so fn runs once the triggers go quiet.
type debouncer struct {
	window time.Duration
	fn     func()

	mu    sync.Mutex
	timer *time.Timer
}

func newDebouncer(window time.Duration, fn func()) *debouncer {
	if window <= 0 {
		window = defaultDebounceWindow
	}
	return &debouncer{window: window, fn: fn}
}

// Trigger schedules fn after the debounce window, cancelling any previously
// scheduled run.
func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fn)
}

// Cancel drops any pending run without executing it.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
