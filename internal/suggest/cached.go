package suggest

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the default number of distinct queries to cache.
const DefaultCacheSize = 256

// Cached wraps a Lookup with an LRU of successful results and collapses
// concurrent lookups for the same normalized query into one backend call.
// Failures are never cached.
type Cached struct {
	inner Lookup
	cache *lru.Cache[string, Result]
	group singleflight.Group
}

// NewCached creates a cached lookup. A non-positive size uses DefaultCacheSize.
func NewCached(inner Lookup, size int) *Cached {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, Result](size)
	return &Cached{
		inner: inner,
		cache: cache,
	}
}

// Lookup returns a cached result if available, otherwise asks the backend.
// Cache hits report zero latency.
func (c *Cached) Lookup(ctx context.Context, query string) (Result, error) {
	key := Normalize(query)

	if res, ok := c.cache.Get(key); ok {
		return Result{Items: cloneItems(res.Items)}, nil
	}

	// The shared call outlives any single caller so a superseded keystroke
	// does not fail the others waiting on it.
	ch := c.group.DoChan(key, func() (any, error) {
		res, err := c.inner.Lookup(context.WithoutCancel(ctx), query)
		if err != nil {
			return Result{}, err
		}
		c.cache.Add(key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		res := r.Val.(Result)
		return Result{Items: cloneItems(res.Items), Latency: res.Latency}, nil
	}
}

// Len returns the number of cached queries.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Purge drops every cached result.
func (c *Cached) Purge() {
	c.cache.Purge()
}

var _ Lookup = (*Cached)(nil)
