package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/vincentandwood-dev/loz-watch/internal/domain"
	"github.com/vincentandwood-dev/loz-watch/internal/observability"
)

// ttlCache memoizes one successful fetch result per route for a fixed
// lifetime. Failed fetches are never cached, so the next request retries
// upstream instead of pinning the failure for a full TTL.
type ttlCache[T any] struct {
	route   string
	ttl     time.Duration
	fetch   func(ctx context.Context) (T, error)
	metrics *observability.Metrics

	mu        sync.Mutex
	value     T
	fetchedAt time.Time
	valid     bool
}

func newTTLCache[T any](route string, ttl time.Duration, fetch func(ctx context.Context) (T, error), metrics *observability.Metrics) *ttlCache[T] {
	return &ttlCache[T]{route: route, ttl: ttl, fetch: fetch, metrics: metrics}
}

// Get returns the cached value when fresh, fetching otherwise. The lock is
// held across the fetch so concurrent requests after expiry collapse into
// one upstream call.
func (c *ttlCache[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && domain.Now().Sub(c.fetchedAt) < c.ttl {
		c.metrics.ResponseCache.WithLabelValues(c.route, "hit").Inc()
		return c.value, nil
	}
	c.metrics.ResponseCache.WithLabelValues(c.route, "miss").Inc()

	value, err := c.fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.value = value
	c.fetchedAt = domain.Now()
	c.valid = true
	return value, nil
}
