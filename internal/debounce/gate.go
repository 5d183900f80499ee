// Package debounce collapses bursts of triggers into a single deferred call.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period used when New is given a non-positive window.
const DefaultWindow = 300 * time.Millisecond

// Gate defers a callback until no newer callback has been scheduled for the
// full window. Of N Schedule calls inside one window exactly one callback
// runs: the most recently scheduled one.
type Gate struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
	stopped bool
}

// New creates a gate with the given quiet window.
func New(window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{window: window}
}

// Window returns the configured quiet period.
func (g *Gate) Window() time.Duration {
	return g.window
}

// Schedule replaces any pending callback with fn and restarts the window.
// fn runs on the timer goroutine, outside the gate's lock.
func (g *Gate) Schedule(fn func()) {
	if fn == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}

	g.stopLocked()
	g.gen++
	gen := g.gen
	g.pending = fn
	g.timer = time.AfterFunc(g.window, func() {
		g.fire(gen)
	})
}

// fire runs the pending callback if gen still identifies it.
// A timer that fired while a newer Schedule held the lock loses here.
func (g *Gate) fire(gen uint64) {
	g.mu.Lock()
	if g.stopped || gen != g.gen || g.pending == nil {
		g.mu.Unlock()
		return
	}
	fn := g.pending
	g.pending = nil
	g.timer = nil
	g.mu.Unlock()

	fn()
}

// Cancel drops the pending callback, if any, without running it.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

// stopLocked must be called with mu held.
func (g *Gate) stopLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.pending = nil
	g.gen++
}

// Pending reports whether a callback is waiting for its window to elapse.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}

// Stop cancels any pending callback and turns later Schedule calls into
// no-ops. Safe to call multiple times.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}
	g.stopLocked()
	g.stopped = true
}
