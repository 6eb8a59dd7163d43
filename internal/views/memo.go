package views

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultMemoTTL is how long an unused derived result is kept.
const DefaultMemoTTL = 30 * time.Second

// Memo caches derived results keyed by their pure inputs, typically the snapshot
// versions they were computed from plus the view parameters. Entries expire after ttl
// without use.
type Memo[K comparable, V any] struct {
	cache *ttlcache.Cache[K, V]
}

// NewMemo creates a memo. A zero ttl means DefaultMemoTTL and a zero capacity is unbounded.
func NewMemo[K comparable, V any](ttl time.Duration, capacity uint64) *Memo[K, V] {
	if ttl <= 0 {
		ttl = DefaultMemoTTL
	}
	opts := []ttlcache.Option[K, V]{ttlcache.WithTTL[K, V](ttl)}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[K, V](capacity))
	}
	cache := ttlcache.New[K, V](opts...)
	go cache.Start()
	return &Memo[K, V]{cache: cache}
}

// Get returns the cached value for key, computing and storing it on a miss.
func (m *Memo[K, V]) Get(key K, compute func() V) V {
	if item := m.cache.Get(key); item != nil {
		return item.Value()
	}
	v := compute()
	m.cache.Set(key, v, ttlcache.DefaultTTL)
	return v
}

// Len returns the number of cached entries.
func (m *Memo[K, V]) Len() int {
	return m.cache.Len()
}

// Close stops the expiry loop.
func (m *Memo[K, V]) Close() {
	m.cache.Stop()
}
