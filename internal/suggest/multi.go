package suggest

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Multi queries several lookups in parallel and merges their items in
// source order, dropping duplicates. It fails only when every source fails.
type Multi struct {
	sources    []Lookup
	maxResults int
	logger     *slog.Logger
}

// NewMulti creates a fan-out lookup over sources.
func NewMulti(maxResults int, sources ...Lookup) *Multi {
	return &Multi{
		sources:    sources,
		maxResults: clampLimit(maxResults),
		logger:     slog.Default(),
	}
}

// Lookup fans out the query and merges results.
// Reported latency is the slowest source's.
func (m *Multi) Lookup(ctx context.Context, query string) (Result, error) {
	if len(m.sources) == 0 {
		return Result{Items: []string{}}, nil
	}

	results := make([]Result, len(m.sources))
	errs := make([]error, len(m.sources))

	var g errgroup.Group
	for i, src := range m.sources {
		g.Go(func() error {
			results[i], errs[i] = src.Lookup(ctx, query)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	seen := make(map[string]struct{})
	items := make([]string, 0, m.maxResults)
	var latency time.Duration
	var firstErr error
	failed := 0

	for i, res := range results {
		if errs[i] != nil {
			failed++
			if firstErr == nil {
				firstErr = errs[i]
			}
			m.logger.Debug("multi_source_failed",
				slog.Int("source", i),
				slog.String("error", errs[i].Error()))
			continue
		}
		latency = max(latency, res.Latency)
		for _, item := range res.Items {
			if len(items) == m.maxResults {
				break
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			items = append(items, item)
		}
	}

	if failed == len(m.sources) {
		return Result{}, firstErr
	}
	return Result{Items: items, Latency: latency}, nil
}

// Warm runs one lookup per prefix against every source concurrently so
// caches and index readers are primed before the first keystroke.
func Warm(ctx context.Context, lookup Lookup, prefixes []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range prefixes {
		g.Go(func() error {
			_, err := lookup.Lookup(gctx, p)
			return err
		})
	}
	return g.Wait()
}

var _ Lookup = (*Multi)(nil)
