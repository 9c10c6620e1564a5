package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/kingrea/dealdesk/internal/order"
)

// DefaultStaleAfter is how long a fetched collection is reused.
const DefaultStaleAfter = 5 * time.Minute

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// Cache wraps a Provider and reuses each collection until it goes stale.
// Failed fetches are not cached. It is safe for concurrent use.
type Cache struct {
	source     Provider
	staleAfter time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[Resource]cacheEntry
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStaleAfter overrides DefaultStaleAfter. Zero disables caching.
func WithStaleAfter(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d >= 0 {
			c.staleAfter = d
		}
	}
}

// WithCacheClock replaces time.Now.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache wraps source.
func NewCache(source Provider, opts ...CacheOption) *Cache {
	c := &Cache{
		source:     source,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
		entries:    map[Resource]cacheEntry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Customers(ctx context.Context) ([]order.Customer, error) {
	return cached(c, ctx, ResourceCustomers, c.source.Customers)
}

func (c *Cache) Products(ctx context.Context) ([]order.Product, error) {
	return cached(c, ctx, ResourceProducts, c.source.Products)
}

func (c *Cache) AddOns(ctx context.Context) ([]order.AddOn, error) {
	return cached(c, ctx, ResourceAddOns, c.source.AddOns)
}

// Invalidate drops every cached collection.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[Resource]cacheEntry{}
}

func (c *Cache) lookup(r Resource) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[r]
	if !ok || c.staleAfter == 0 {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.staleAfter {
		delete(c.entries, r)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) store(r Resource, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[r] = cacheEntry{value: value, fetchedAt: c.now()}
}

// cached serves r from the cache or fetch. Concurrent misses may both
// fetch; the later result wins.
func cached[T any](c *Cache, ctx context.Context, r Resource, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := c.lookup(r); ok {
		return cloneSlice(v.([]T)), nil
	}
	fresh, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.store(r, cloneSlice(fresh))
	return fresh, nil
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
