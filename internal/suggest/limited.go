package suggest

import (
	"context"

	"golang.org/x/time/rate"
)

// Limited throttles calls to the wrapped Lookup with a token bucket.
// Callers wait for a token; a cancelled context abandons the wait.
type Limited struct {
	inner   Lookup
	limiter *rate.Limiter
}

// NewLimited allows perSecond calls with the given burst.
// A non-positive perSecond disables limiting.
func NewLimited(inner Lookup, perSecond float64, burst int) *Limited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limited{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Lookup waits for a token, then delegates.
func (l *Limited) Lookup(ctx context.Context, query string) (Result, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, err
	}
	return l.inner.Lookup(ctx, query)
}

var _ Lookup = (*Limited)(nil)
