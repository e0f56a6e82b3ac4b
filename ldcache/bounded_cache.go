package ldcache

import (
	"time"

	"github.com/launchdarkly/go-config-monitor/interfaces"
	"github.com/launchdarkly/go-config-monitor/internal"

	"github.com/launchdarkly/ccache"
	"golang.org/x/sync/singleflight"
)

// DefaultBoundedCacheSize is the maximum number of entries used by NewBoundedCache if the size
// parameter is zero or negative.
const DefaultBoundedCacheSize = 1000

// BoundedCache is an interfaces.Cache that holds at most a fixed number of snapshots, evicting the
// least recently used one when it is full. Entries may also be given a time limit.
//
// The underlying LRU cache runs a background goroutine; call Close when the cache is no longer needed.
type BoundedCache[T any] struct {
	entries  *ccache.Cache
	ttl      time.Duration
	requests singleflight.Group
}

// NewBoundedCache creates a BoundedCache with room for maxSize entries. If ttl is zero or negative,
// entries do not expire and are only removed by eviction or invalidation.
func NewBoundedCache[T any](maxSize int, ttl time.Duration) *BoundedCache[T] {
	if maxSize <= 0 {
		maxSize = DefaultBoundedCacheSize
	}
	if ttl <= 0 {
		ttl = neverExpires
	}
	return &BoundedCache[T]{
		entries: ccache.New(ccache.Configure().MaxSize(int64(maxSize))),
		ttl:     ttl,
	}
}

// ccache requires a duration for every item; this is long enough to mean "forever".
const neverExpires = 100 * 365 * 24 * time.Hour

var _ interfaces.Cache[int] = (*BoundedCache[int])(nil)

// GetOrAdd is a standard method of Cache.
func (c *BoundedCache[T]) GetOrAdd(name string, create func() (T, error)) (T, error) {
	entry := c.getEntry(name)
	if entry == nil {
		// Use singleflight so that concurrent misses on this name agree on a single entry. The build
		// itself happens outside of the flight.
		value, _, _ := c.requests.Do(name, func() (interface{}, error) {
			if existing := c.getEntry(name); existing != nil {
				return existing, nil
			}
			newEntry := internal.NewLazy(create)
			c.entries.Set(name, newEntry, c.ttl)
			return newEntry, nil
		})
		entry = value.(*internal.Lazy[T])
	}
	return internal.ResolveLazy(entry, func() { c.removeEntry(name, entry) })
}

// TryAdd is a standard method of Cache.
func (c *BoundedCache[T]) TryAdd(name string, value T) bool {
	added, _, _ := c.requests.Do(name, func() (interface{}, error) {
		if c.getEntry(name) != nil {
			return false, nil
		}
		c.entries.Set(name, internal.NewLazyValue(value), c.ttl)
		return true, nil
	})
	return added.(bool)
}

// TryRemove is a standard method of Cache.
func (c *BoundedCache[T]) TryRemove(name string) bool {
	return c.entries.Delete(name)
}

// Clear is a standard method of Cache.
func (c *BoundedCache[T]) Clear() {
	c.entries.Clear()
}

// Close stops the cache's background goroutine.
func (c *BoundedCache[T]) Close() {
	c.entries.Stop()
}

func (c *BoundedCache[T]) getEntry(name string) *internal.Lazy[T] {
	item := c.entries.Get(name)
	if item == nil || item.Expired() {
		return nil
	}
	if entry, ok := item.Value().(*internal.Lazy[T]); ok {
		return entry
	}
	return nil // COVERAGE: only Lazy values are ever stored
}

func (c *BoundedCache[T]) removeEntry(name string, entry *internal.Lazy[T]) {
	if c.getEntry(name) == entry {
		c.entries.Delete(name)
	}
}
