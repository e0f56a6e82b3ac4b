package ldcache

import (
	"sync"
	"time"

	"github.com/launchdarkly/go-config-monitor/interfaces"
	"github.com/launchdarkly/go-config-monitor/internal"

	"github.com/patrickmn/go-cache"
)

// ExpiringCache is an interfaces.Cache whose entries are dropped a fixed time after they were added,
// so that the next access rebuilds the snapshot even if no change was reported.
type ExpiringCache[T any] struct {
	entries *cache.Cache
	// go-cache has no atomic delete-if-present, so removals are serialized here. Inserts need no
	// lock, because Add fails while the entry being removed is still present.
	removeLock sync.Mutex
}

// NewExpiringCache creates an ExpiringCache. A ttl of zero or less means entries never expire, which
// makes it behave like NewMemoryCache.
func NewExpiringCache[T any](ttl time.Duration) *ExpiringCache[T] {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	cleanupInterval := 5 * time.Minute
	if ttl > 0 && ttl < cleanupInterval {
		cleanupInterval = ttl
	}
	return &ExpiringCache[T]{entries: cache.New(ttl, cleanupInterval)}
}

var _ interfaces.Cache[int] = (*ExpiringCache[int])(nil)

// GetOrAdd is a standard method of Cache.
func (c *ExpiringCache[T]) GetOrAdd(name string, create func() (T, error)) (T, error) {
	var entry *internal.Lazy[T]
	for entry == nil {
		if existing := c.getEntry(name); existing != nil {
			entry = existing
			break
		}
		// Add only succeeds if there is no live entry, so it acts as a compare-and-swap insert. If
		// another goroutine won, go around again and use its entry.
		newEntry := internal.NewLazy(create)
		if c.entries.Add(name, newEntry, cache.DefaultExpiration) == nil {
			entry = newEntry
		}
	}
	return internal.ResolveLazy(entry, func() { c.removeEntry(name, entry) })
}

// TryAdd is a standard method of Cache.
func (c *ExpiringCache[T]) TryAdd(name string, value T) bool {
	return c.entries.Add(name, internal.NewLazyValue(value), cache.DefaultExpiration) == nil
}

// TryRemove is a standard method of Cache.
func (c *ExpiringCache[T]) TryRemove(name string) bool {
	c.removeLock.Lock()
	defer c.removeLock.Unlock()
	if _, found := c.entries.Get(name); !found {
		return false
	}
	c.entries.Delete(name)
	return true
}

// Clear is a standard method of Cache.
func (c *ExpiringCache[T]) Clear() {
	c.entries.Flush()
}

func (c *ExpiringCache[T]) getEntry(name string) *internal.Lazy[T] {
	if value, found := c.entries.Get(name); found {
		if entry, ok := value.(*internal.Lazy[T]); ok {
			return entry
		}
	}
	return nil
}

func (c *ExpiringCache[T]) removeEntry(name string, entry *internal.Lazy[T]) {
	c.removeLock.Lock()
	defer c.removeLock.Unlock()
	if c.getEntry(name) == entry {
		c.entries.Delete(name)
	}
}
