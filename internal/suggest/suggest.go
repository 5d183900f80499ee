// Package suggest provides suggestion lookup backends and decorators.
//
// Every backend implements Lookup. Decorators (Cached, Limited, Simulated)
// wrap another Lookup, and Multi merges several. Build assembles them from
// configuration. Remote guards its HTTP calls with a circuit breaker of its
// own.
package suggest

import (
	"context"
	"strings"
	"time"
)

// DefaultMaxResults is the number of suggestions returned when no limit is set.
const DefaultMaxResults = 7

// DefaultWords is the built-in vocabulary used when no words file is configured.
var DefaultWords = []string{
	"react", "redux", "router", "render", "ref", "request", "response", "promise",
	"prototype", "proxy", "typescript", "tailwind", "testing", "throttle", "debounce", "javascript",
}

// Result is the outcome of a successful lookup.
type Result struct {
	// Items are the suggestions, best first.
	Items []string `json:"items"`

	// Latency is the backend-reported service time. Zero means unknown.
	Latency time.Duration `json:"latency"`
}

// Lookup resolves a query into suggestions.
// Implementations must honour ctx cancellation and must be safe for
// concurrent use. No ordering is guaranteed between concurrent calls.
type Lookup interface {
	Lookup(ctx context.Context, query string) (Result, error)
}

// LookupFunc adapts a plain function to the Lookup interface.
type LookupFunc func(ctx context.Context, query string) (Result, error)

// Lookup calls f.
func (f LookupFunc) Lookup(ctx context.Context, query string) (Result, error) {
	return f(ctx, query)
}

// Normalize trims and lowercases a query for matching.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// NormalizeWords lowercases, trims and deduplicates words, preserving the
// first occurrence order. Blank lines and '#' comments are dropped.
func NormalizeWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = Normalize(w)
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultMaxResults
	}
	return limit
}

func cloneItems(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
