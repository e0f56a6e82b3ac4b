package interfaces

// DefaultName is the canonical name of the unnamed, primary configuration. Every name that
// passes through the monitor is normalized, so an empty name always refers to this one.
const DefaultName = ""

// Factory builds a configuration snapshot for a name.
//
// The monitor calls Create synchronously, on the goroutine that asked for the value, and at most
// once per name between invalidations. An error is returned to the caller unchanged and is not
// cached.
type Factory[T any] interface {
	Create(name string) (T, error)
}

// FactoryFunc is an adapter that allows an ordinary function to be used as a Factory.
type FactoryFunc[T any] func(name string) (T, error)

// Create calls f(name).
func (f FactoryFunc[T]) Create(name string) (T, error) {
	return f(name)
}

// Cache is a name-keyed store of configuration snapshots.
//
// Implementations must be safe for concurrent use. GetOrAdd must be atomic per name: when several
// goroutines miss on the same name at once, create is called once and all of them receive the
// same value. If create returns an error, nothing is stored.
type Cache[T any] interface {
	// GetOrAdd returns the cached value for name, calling create to build it if there is none.
	GetOrAdd(name string, create func() (T, error)) (T, error)
	// TryAdd stores value for name if there is no entry yet, and reports whether it did.
	TryAdd(name string, value T) bool
	// TryRemove removes the entry for name, and reports whether there was one.
	TryRemove(name string) bool
	// Clear removes every entry.
	Clear()
}

// ChangeEvent is the value delivered to channel listeners when a named snapshot has been
// rebuilt after a change notification.
type ChangeEvent[T any] struct {
	// Name is the normalized name of the configuration that changed.
	Name string
	// Value is the newly built snapshot.
	Value T
}
