package nominatim

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/laudo-service/internal/domain"
	"github.com/couchcryptid/laudo-service/internal/observability"
	"github.com/golang/groupcache/lru"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed by the
// coordinates rounded to six decimals.
type CachedGeocoder struct {
	inner   domain.Geocoder
	metrics *observability.Metrics

	mu    sync.Mutex // lru.Cache is not safe for concurrent use
	cache *lru.Cache
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		metrics: metrics,
		cache:   lru.New(maxEntries),
	}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("%.6f,%.6f", lat, lon)
	if result, ok := c.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	// Only cache matches so a location Nominatim could not resolve is retried.
	if result.DisplayName != "" {
		c.put(key, result)
	}
	return result, nil
}

func (c *CachedGeocoder) get(key string) (domain.GeocodingResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(key)
	if !ok {
		return domain.GeocodingResult{}, false
	}
	return v.(domain.GeocodingResult), true
}

func (c *CachedGeocoder) put(key string, result domain.GeocodingResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, result)
}

func (c *CachedGeocoder) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
