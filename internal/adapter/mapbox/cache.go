package mapbox

import (
	"container/list"
	"context"
	"strings"
	"sync"

	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed by the
// normalized station name and region.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru[string, domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRU[string, domain.GeocodingResult](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, name, region string) (domain.GeocodingResult, error) {
	key := strings.ToUpper(strings.TrimSpace(name)) + "|" + strings.ToUpper(strings.TrimSpace(region))
	if result, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ForwardGeocode(ctx, name, region)
	if err != nil {
		return result, err
	}
	// Empty answers are not cached so a later run can retry them.
	if result.Lat != 0 || result.Lon != 0 {
		c.cache.put(key, result)
	}
	return result, nil
}

// lru is a mutex-guarded least-recently-used map.
type lru[K comparable, V any] struct {
	mu    sync.Mutex
	limit int
	order *list.List // front is most recent
	items map[K]*list.Element
}

type lruItem[K comparable, V any] struct {
	key   K
	value V
}

func newLRU[K comparable, V any](limit int) *lru[K, V] {
	return &lru[K, V]{
		limit: max(limit, 1),
		order: list.New(),
		items: make(map[K]*list.Element),
	}
}

func (c *lru[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruItem[K, V]).value, true
}

func (c *lru[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruItem[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&lruItem[K, V]{key: key, value: value})
	if c.order.Len() > c.limit {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruItem[K, V]).key)
	}
}

func (c *lru[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
