package errors

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker refuses a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerState represents the circuit breaker state.
type BreakerState int

const (
	// BreakerClosed is the normal state where calls are allowed.
	BreakerClosed BreakerState = iota
	// BreakerOpen is when the breaker is tripped and calls fail fast.
	BreakerOpen
	// BreakerHalfOpen is when a single probe call is allowed through.
	BreakerHalfOpen
)

// String returns a string representation of the state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker fails fast when a lookup backend keeps failing.
// Cancelled calls are neither successes nor failures: a superseded
// keystroke says nothing about backend health.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
	probing     bool
}

// CircuitBreakerOption configures a CircuitBreaker.
type CircuitBreakerOption func(*CircuitBreaker)

// WithMaxFailures sets the number of consecutive failures before opening.
func WithMaxFailures(n int) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		if n > 0 {
			cb.maxFailures = n
		}
	}
}

// WithResetTimeout sets how long the breaker stays open before probing.
func WithResetTimeout(d time.Duration) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		if d > 0 {
			cb.resetTimeout = d
		}
	}
}

// WithBreakerClock overrides the time source.
func WithBreakerClock(now func() time.Time) CircuitBreakerOption {
	return func(cb *CircuitBreaker) {
		if now != nil {
			cb.now = now
		}
	}
}

// NewCircuitBreaker creates a new circuit breaker with the given name.
// Default: 5 failures, 30 second reset timeout.
func NewCircuitBreaker(name string, opts ...CircuitBreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		maxFailures:  5,
		resetTimeout: 30 * time.Second,
		now:          time.Now,
		state:        BreakerClosed,
	}

	for _, opt := range opts {
		opt(cb)
	}

	return cb
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

// currentState must be called with mu held.
func (cb *CircuitBreaker) currentState() BreakerState {
	if cb.state == BreakerOpen && cb.now().Sub(cb.lastFailure) >= cb.resetTimeout {
		return BreakerHalfOpen
	}
	return cb.state
}

// Failures returns the consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// acquire reports whether a call may proceed, claiming the probe slot
// when half-open.
func (cb *CircuitBreaker) acquire() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentState() {
	case BreakerClosed:
		return true
	case BreakerHalfOpen:
		if cb.probing {
			return false
		}
		cb.state = BreakerHalfOpen
		cb.probing = true
		return true
	default:
		return false
	}
}

// settle records the outcome of a call admitted by acquire.
func (cb *CircuitBreaker) settle(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	wasProbe := cb.probing
	cb.probing = false

	switch {
	case err == nil:
		cb.failures = 0
		cb.state = BreakerClosed
	case errors.Is(err, context.Canceled):
		if wasProbe {
			// Give the next call the probe.
			cb.state = BreakerOpen
			cb.lastFailure = cb.now().Add(-cb.resetTimeout)
		}
	default:
		cb.failures++
		cb.lastFailure = cb.now()
		if wasProbe || cb.failures >= cb.maxFailures {
			cb.state = BreakerOpen
		}
	}
}

// Execute runs fn through the breaker.
// Returns ErrCircuitOpen without calling fn if the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.acquire() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.settle(err)
	return err
}

// CircuitExecute is the generic form of Execute for calls returning a value.
func CircuitExecute[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	if !cb.acquire() {
		var zero T
		return zero, ErrCircuitOpen
	}
	result, err := fn()
	cb.settle(err)
	return result, err
}
