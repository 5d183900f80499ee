package suggest

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
)

// Simulation defaults mirror a slow, flaky network.
const (
	DefaultSimulatedMinLatency  = 120 * time.Millisecond
	DefaultSimulatedJitter      = 500 * time.Millisecond
	DefaultSimulatedFailureRate = 0.12
)

// SimulatedFailureMessage is the message of injected failures.
const SimulatedFailureMessage = "network error (simulated)"

// SimulatedConfig configures a Simulated decorator.
type SimulatedConfig struct {
	MinLatency  time.Duration
	Jitter      time.Duration
	FailureRate float64

	// Rand overrides the randomness source. Nil uses a time-seeded PCG.
	Rand *rand.Rand
}

// Simulated delays every lookup by MinLatency plus a random share of Jitter
// and fails a FailureRate fraction of them. Independent delays make
// responses arrive out of order.
type Simulated struct {
	inner       Lookup
	minLatency  time.Duration
	jitter      time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated wraps inner.
func NewSimulated(inner Lookup, cfg SimulatedConfig) *Simulated {
	rng := cfg.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	rate := cfg.FailureRate
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return &Simulated{
		inner:       inner,
		minLatency:  max(cfg.MinLatency, 0),
		jitter:      max(cfg.Jitter, 0),
		failureRate: rate,
		rng:         rng,
	}
}

// roll draws the delay and failure outcome for one call.
func (s *Simulated) roll() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay := s.minLatency
	if s.jitter > 0 {
		delay += time.Duration(s.rng.Int64N(int64(s.jitter)))
	}
	fail := s.failureRate > 0 && s.rng.Float64() < s.failureRate
	return delay, fail
}

// Lookup waits for the simulated delay, then fails or delegates.
func (s *Simulated) Lookup(ctx context.Context, query string) (Result, error) {
	delay, fail := s.roll()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-timer.C:
	}

	if fail {
		return Result{}, terrors.New(terrors.ErrCodeLookupSimulated, SimulatedFailureMessage, nil)
	}

	res, err := s.inner.Lookup(ctx, query)
	if err != nil {
		return Result{}, err
	}
	res.Latency += delay
	return res, nil
}

var _ Lookup = (*Simulated)(nil)
