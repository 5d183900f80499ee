package typeahead

import (
	"context"
	"log/slog"
	"time"

	"github.com/Aman-CERP/typeahead/internal/debounce"
	"github.com/Aman-CERP/typeahead/internal/telemetry"
)

// RenderFunc receives every new State, in transition order. It runs while
// the orchestrator holds its lock and must not call back into it.
type RenderFunc func(State)

// Recorder receives lookup telemetry. *telemetry.Metrics implements it.
type Recorder interface {
	Record(ev telemetry.LookupEvent)
}

type options struct {
	debounce      time.Duration
	lookupTimeout time.Duration
	logger        *slog.Logger
	recorder      Recorder
	ctx           context.Context
	now           func() time.Time
}

func defaultOptions() options {
	return options{
		debounce: debounce.DefaultWindow,
		logger:   slog.Default(),
		ctx:      context.Background(),
		now:      time.Now,
	}
}

// Option configures an Orchestrator.
type Option func(*options)

// WithDebounce sets the quiet window before a typed query is dispatched.
// Non-positive values keep the 300ms default.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithLookupTimeout bounds each lookup. Zero means no timeout.
func WithLookupTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.lookupTimeout = d
		}
	}
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the telemetry sink.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithContext sets the parent context of every lookup. Close cancels the
// derived context.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithClock overrides the clock used to measure lookup latency.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
