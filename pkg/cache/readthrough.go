package cache

import (
	"context"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/metrics"
)

// ReadThrough serves key from the cache when possible, otherwise calls load
// and fills the cache with its result. Cache failures on either side are
// logged and degrade to a plain load, never surfaced to the caller.
func ReadThrough[T any](ctx context.Context, store *Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := store.GetJSON(ctx, key, &cached)
	if err != nil {
		log.Warnf("cache read for %s failed, falling back to source: %v", key, err)
	} else if hit {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := store.SetJSON(ctx, key, value, ttl); err != nil {
		log.Warnf("cache fill for %s failed: %v", key, err)
	}
	return value, nil
}
