package ldcache

import (
	"sync"

	"github.com/launchdarkly/go-config-monitor/interfaces"
	"github.com/launchdarkly/go-config-monitor/internal"
)

// MemoryCache is an unbounded in-memory interfaces.Cache.
type MemoryCache[T any] struct {
	entries map[string]*internal.Lazy[T]
	lock    sync.Mutex
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{entries: make(map[string]*internal.Lazy[T])}
}

var _ interfaces.Cache[int] = (*MemoryCache[int])(nil)

// GetOrAdd is a standard method of Cache.
func (c *MemoryCache[T]) GetOrAdd(name string, create func() (T, error)) (T, error) {
	c.lock.Lock()
	entry, ok := c.entries[name]
	if !ok {
		entry = internal.NewLazy(create)
		c.entries[name] = entry
	}
	c.lock.Unlock()

	return internal.ResolveLazy(entry, func() { c.removeEntry(name, entry) })
}

// TryAdd is a standard method of Cache.
func (c *MemoryCache[T]) TryAdd(name string, value T) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.entries[name]; ok {
		return false
	}
	c.entries[name] = internal.NewLazyValue(value)
	return true
}

// TryRemove is a standard method of Cache.
func (c *MemoryCache[T]) TryRemove(name string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.entries[name]; !ok {
		return false
	}
	delete(c.entries, name)
	return true
}

// Clear is a standard method of Cache.
func (c *MemoryCache[T]) Clear() {
	c.lock.Lock()
	c.entries = make(map[string]*internal.Lazy[T])
	c.lock.Unlock()
}

// Len returns the number of entries, including ones whose build has not finished.
func (c *MemoryCache[T]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.entries)
}

// removeEntry deletes the entry for name only if it is still the given one; a newer entry created
// after an invalidation is left alone.
func (c *MemoryCache[T]) removeEntry(name string, entry *internal.Lazy[T]) {
	c.lock.Lock()
	if c.entries[name] == entry {
		delete(c.entries, name)
	}
	c.lock.Unlock()
}
