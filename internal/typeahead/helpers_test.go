package typeahead

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
)

// call is one lookup waiting for the test to settle it.
type call struct {
	query string
	done  chan outcome
}

type outcome struct {
	res suggest.Result
	err error
}

func (c *call) succeed(items ...string) {
	c.done <- outcome{res: suggest.Result{Items: items, Latency: 10 * time.Millisecond}}
}

func (c *call) fail(err error) {
	c.done <- outcome{err: err}
}

// scriptedLookup blocks every lookup until the test resolves it, so
// responses can be delivered in any order.
type scriptedLookup struct {
	calls chan *call
}

func newScriptedLookup() *scriptedLookup {
	return &scriptedLookup{calls: make(chan *call, 16)}
}

func (s *scriptedLookup) Lookup(ctx context.Context, query string) (suggest.Result, error) {
	c := &call{query: query, done: make(chan outcome, 1)}
	s.calls <- c
	select {
	case out := <-c.done:
		return out.res, out.err
	case <-ctx.Done():
		return suggest.Result{}, ctx.Err()
	}
}

// next waits for the next issued lookup.
func (s *scriptedLookup) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-s.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for lookup")
		return nil
	}
}

// none asserts that no lookup is issued within d.
func (s *scriptedLookup) none(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case c := <-s.calls:
		t.Fatalf("unexpected lookup for %q", c.query)
	case <-time.After(d):
	}
}

// stateLog collects every emitted State.
type stateLog struct {
	mu     sync.Mutex
	states []State
}

func (l *stateLog) render(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, s)
}

func (l *stateLog) all() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]State, len(l.states))
	copy(out, l.states)
	return out
}

func (l *stateLog) phases() []Phase {
	var out []Phase
	for _, s := range l.all() {
		out = append(out, s.Phase)
	}
	return out
}

// newTestOrchestrator wires an orchestrator with a short window and a
// state log, and closes it when the test ends.
func newTestOrchestrator(t *testing.T, lookup suggest.Lookup, opts ...Option) (*Orchestrator, *stateLog) {
	t.Helper()
	opts = append([]Option{WithDebounce(20 * time.Millisecond)}, opts...)
	o := New(lookup, opts...)
	t.Cleanup(o.Close)

	log := &stateLog{}
	o.Subscribe(log.render)
	return o, log
}

// waitPhase blocks until the orchestrator reaches phase.
func waitPhase(t *testing.T, o *Orchestrator, phase Phase) State {
	t.Helper()
	require.Eventually(t, func() bool {
		return o.State().Phase == phase
	}, 2*time.Second, time.Millisecond)
	return o.State()
}

// outcomeCount reads one outcome counter from a telemetry collector.
func outcomeCount(m *telemetry.Metrics, outcome telemetry.Outcome) int64 {
	return m.Snapshot().OutcomeCounts[outcome]
}
