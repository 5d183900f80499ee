package typeahead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/Aman-CERP/typeahead/internal/debounce"
	terrors "github.com/Aman-CERP/typeahead/internal/errors"
	"github.com/Aman-CERP/typeahead/internal/sequencer"
	"github.com/Aman-CERP/typeahead/internal/suggest"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
)

// Orchestrator owns the search State and the request sequencer.
// All methods are safe for concurrent use.
type Orchestrator struct {
	lookup   suggest.Lookup
	gate     *debounce.Gate
	seq      *sequencer.Sequencer
	logger   *slog.Logger
	recorder Recorder
	timeout  time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	// mu serialises transitions together with their emission.
	mu     sync.Mutex
	state  State
	subs   []*subscription
	nextID uint64

	// input advances on every SetQuery, SelectSuggestion and Clear so a
	// debounced trigger that lost the race to newer input does nothing.
	input     uint64
	// scheduled is set while a debounced trigger has not yet dispatched.
	scheduled bool
	closed    bool
}

type subscription struct {
	id     uint64
	render RenderFunc
}

// New creates an orchestrator around lookup.
func New(lookup suggest.Lookup, opts ...Option) *Orchestrator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(o.ctx)
	return &Orchestrator{
		lookup:   lookup,
		gate:     debounce.New(o.debounce),
		seq:      sequencer.New(),
		logger:   o.logger,
		recorder: o.recorder,
		timeout:  o.lookupTimeout,
		now:      o.now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Subscribe registers render for every future State. The returned function
// removes it and may be called more than once.
func (o *Orchestrator) Subscribe(render RenderFunc) (unsubscribe func()) {
	if render == nil {
		return func() {}
	}

	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, &subscription{id: id, render: render})
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, s := range o.subs {
				if s.id == id {
					o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// State returns a copy of the current snapshot.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// SetQuery records raw input. Blank input cancels everything and goes idle;
// anything else is dispatched once the debounce window passes quietly.
func (o *Orchestrator) SetQuery(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.input++

	if strings.TrimSpace(text) == "" {
		o.resetLocked(text)
		return
	}

	o.setLocked(o.state.withQuery(text))

	input := o.input
	o.scheduled = true
	o.gate.Schedule(func() {
		o.dispatchScheduled(input, text)
	})
}

// Pending reports whether a debounced query is waiting to be dispatched.
// Together with PhaseLoading it tells a caller whether more states are
// still on the way.
func (o *Orchestrator) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.scheduled && !o.closed
}

// SelectSuggestion sets the query to text and dispatches it immediately,
// dropping any pending debounced trigger.
func (o *Orchestrator) SelectSuggestion(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.input++
	o.gate.Cancel()

	if strings.TrimSpace(text) == "" {
		o.resetLocked(text)
		return
	}
	o.state = o.state.withQuery(text)
	o.dispatchLocked(text)
}

// Clear cancels pending and in-flight work and resets to an empty idle state.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.input++
	o.resetLocked("")
}

// Retry dispatches the current query again without waiting for the
// debounce window. It does nothing while the query is blank.
func (o *Orchestrator) Retry() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || strings.TrimSpace(o.state.Query) == "" {
		return
	}
	o.input++
	o.gate.Cancel()
	o.dispatchLocked(o.state.Query)
}

// Close stops the gate, invalidates every in-flight lookup and cancels
// their context. Later calls on o do nothing.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.gate.Stop()
	o.seq.Invalidate()
	o.subs = nil
	o.mu.Unlock()

	o.cancel()
}

// resetLocked cancels the pending trigger, invalidates outstanding tokens
// and emits an idle state for query.
func (o *Orchestrator) resetLocked(query string) {
	o.gate.Cancel()
	o.scheduled = false
	o.seq.Invalidate()
	o.setLocked(idleState(query))
}

// dispatchScheduled runs on the gate's timer goroutine.
func (o *Orchestrator) dispatchScheduled(input uint64, query string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed || input != o.input {
		return
	}
	o.dispatchLocked(query)
}

// dispatchLocked enters Loading under a fresh token and starts the lookup.
func (o *Orchestrator) dispatchLocked(query string) {
	o.scheduled = false
	token := o.seq.Next()
	o.setLocked(loadingState(o.state.Query, token))

	o.logger.Debug("lookup_dispatched",
		slog.String("query", query),
		slog.Uint64("token", uint64(token)))
	o.record(telemetry.LookupEvent{Query: query, Outcome: telemetry.OutcomeDispatched})

	go o.run(token, query)
}

// run performs one lookup and hands the outcome back with its token.
func (o *Orchestrator) run(token sequencer.Token, query string) {
	ctx := o.ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := o.now()
	res, err := o.invoke(ctx, query)
	elapsed := o.now().Sub(start)

	o.settle(token, query, res, err, elapsed)
}

// invoke calls the lookup, converting a panic into an error.
func (o *Orchestrator) invoke(ctx context.Context, query string) (res suggest.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("lookup_panic",
				slog.String("query", query),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			res = suggest.Result{}
			err = terrors.New(terrors.ErrCodeLookupPanic, "lookup failed unexpectedly", fmt.Errorf("panic: %v", r))
		}
	}()

	res, err = o.lookup.Lookup(ctx, query)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		var te *terrors.TypeaheadError
		if !errors.As(err, &te) {
			err = terrors.LookupError("lookup timed out", err)
		}
	}
	return res, err
}

// settle applies a finished lookup if its token is still current.
func (o *Orchestrator) settle(token sequencer.Token, query string, res suggest.Result, err error, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	if !o.seq.IsCurrent(token) {
		attrs := []any{
			slog.String("query", query),
			slog.Uint64("token", uint64(token)),
			slog.Uint64("current", uint64(o.seq.Current())),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		o.logger.Debug("lookup_stale_discarded", attrs...)
		o.record(telemetry.LookupEvent{Query: query, Outcome: telemetry.OutcomeStale, Latency: elapsed})
		return
	}

	if err != nil {
		o.logger.Warn("lookup_failed",
			slog.String("query", query),
			slog.String("code", terrors.GetCode(err)),
			slog.String("error", err.Error()))
		o.record(telemetry.LookupEvent{Query: query, Outcome: telemetry.OutcomeError, Latency: elapsed})
		o.setLocked(errorState(o.state.Query, token, terrors.UserMessage(err)))
		return
	}

	latency := res.Latency
	if latency <= 0 {
		latency = elapsed
	}
	o.record(telemetry.LookupEvent{
		Query:       query,
		Outcome:     telemetry.OutcomeSuccess,
		ResultCount: len(res.Items),
		Latency:     latency,
	})
	o.setLocked(successState(o.state.Query, token, res.Items, latency))
}

// setLocked replaces the state and emits it to every subscriber.
func (o *Orchestrator) setLocked(s State) {
	o.state = s
	for _, sub := range o.subs {
		o.emit(sub, s.clone())
	}
}

func (o *Orchestrator) emit(sub *subscription, s State) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("render_panic",
				slog.Uint64("subscriber", sub.id),
				slog.Any("panic", r))
		}
	}()
	sub.render(s)
}

func (o *Orchestrator) record(ev telemetry.LookupEvent) {
	if o.recorder == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = o.now()
	}
	o.recorder.Record(ev)
}
