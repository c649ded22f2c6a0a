package server

import (
	"sync"
	"time"
)

// debouncer coalesces rapid edits to the same document into a single
// diagnostics recompute, fired `delay` after the last scheduled edit —
// spec.md §4.5's "diagnostics recompute at most once per 250ms of
// editing stillness" policy, the Server Facade's responsibility since
// internal/analyzer is a stateless pure function with no notion of time.
type debouncer struct {
	delay time.Duration
	fn    func(uri string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer(delay time.Duration, fn func(uri string)) *debouncer {
	return &debouncer{
		delay:  delay,
		fn:     fn,
		timers: make(map[string]*time.Timer),
	}
}

// schedule resets uri's timer, canceling any pending fire still in flight.
func (d *debouncer) schedule(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[uri]; ok {
		t.Stop()
	}
	d.timers[uri] = time.AfterFunc(d.delay, func() {
		d.fn(uri)
	})
}

// cancel drops uri's pending timer without firing it, used when a
// document closes mid-debounce.
func (d *debouncer) cancel(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[uri]; ok {
		t.Stop()
		delete(d.timers, uri)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = make(map[string]*time.Timer)
}
