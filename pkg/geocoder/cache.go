package geocoder

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodshare_geocoder_cache_hits_total",
		Help: "Geocoder lookups answered from the cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodshare_geocoder_cache_misses_total",
		Help: "Geocoder lookups forwarded to the provider.",
	})
)

// CachedResolver memoizes successful lookups. Failures and fallback results
// are not cached.
type CachedResolver struct {
	next  Resolver
	cache *expirable.LRU[string, Result]
}

func NewCachedResolver(next Resolver, size int, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		next:  next,
		cache: expirable.NewLRU[string, Result](size, nil, ttl),
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, address string) (Result, error) {
	key := strings.ToLower(strings.Join(strings.Fields(address), " "))
	if res, ok := c.cache.Get(key); ok {
		cacheHitsTotal.Inc()
		return res, nil
	}
	cacheMissesTotal.Inc()

	res, err := c.next.Resolve(ctx, address)
	if err != nil {
		return Result{}, err
	}
	if !res.Fallback {
		c.cache.Add(key, res)
	}
	return res, nil
}

func (c *CachedResolver) Len() int {
	return c.cache.Len()
}
