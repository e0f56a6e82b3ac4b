package ldmonitor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/launchdarkly/go-config-monitor/changetoken"
	"github.com/launchdarkly/go-config-monitor/interfaces"
	"github.com/launchdarkly/go-config-monitor/internal"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// DefaultName is the name of the unnamed, primary configuration.
const DefaultName = interfaces.DefaultName

// ErrInvalidArgument is wrapped by the error that NewMonitor returns when a required component is
// missing.
var ErrInvalidArgument = errors.New("invalid argument")

// Monitor keeps named configuration snapshots up to date.
//
// Snapshots are built by the Factory on first use and cached. When a change source fires for a name,
// the monitor removes that name's snapshot from the cache, builds a new one immediately, and passes it
// to every listener. All of this happens synchronously on the goroutine that fired the change; the
// monitor has no goroutines of its own.
//
// Change notifications cannot carry errors back to whatever fired them. If the Factory fails while
// rebuilding a snapshot after a change, the error is only logged, at Error level, through
// Config.Loggers; listeners are not called, and the next Get tries to build the snapshot again.
//
// All methods are safe for concurrent use.
type Monitor[T any] struct {
	factory               interfaces.Factory[T]
	cache                 interfaces.Cache[T]
	listeners             *internal.ListenerRegistry[func(T, string)]
	broadcaster           *internal.Broadcaster[interfaces.ChangeEvent[T]]
	registrations         []interfaces.Registration
	loggers               ldlog.Loggers
	isolateListenerPanics bool
	lock                  sync.Mutex
}

// NewMonitor creates a Monitor with the default configuration.
//
// The monitor subscribes to every source immediately. An error is returned if factory or cache is
// nil, or if any source is nil.
func NewMonitor[T any](
	factory interfaces.Factory[T],
	sources []interfaces.ChangeTokenSource,
	cache interfaces.Cache[T],
) (*Monitor[T], error) {
	return NewCustomMonitor(factory, sources, cache, Config{})
}

// NewCustomMonitor creates a Monitor with a custom configuration. See NewMonitor.
func NewCustomMonitor[T any](
	factory interfaces.Factory[T],
	sources []interfaces.ChangeTokenSource,
	cache interfaces.Cache[T],
	config Config,
) (*Monitor[T], error) {
	if factory == nil {
		return nil, fmt.Errorf("configuration monitor requires a factory: %w", ErrInvalidArgument)
	}
	if cache == nil {
		return nil, fmt.Errorf("configuration monitor requires a cache: %w", ErrInvalidArgument)
	}
	for i, source := range sources {
		if source == nil {
			return nil, fmt.Errorf("change source %d is nil: %w", i, ErrInvalidArgument)
		}
	}

	m := &Monitor[T]{
		factory:               factory,
		cache:                 cache,
		listeners:             internal.NewListenerRegistry[func(T, string)](),
		broadcaster:           internal.NewBroadcaster[interfaces.ChangeEvent[T]](),
		loggers:               config.Loggers,
		isolateListenerPanics: config.IsolateListenerPanics,
	}

	// Sources may fire while we are still subscribing, so the monitor must be complete at this point.
	registrations := make([]interfaces.Registration, 0, len(sources))
	for _, source := range sources {
		source := source
		reg := changetoken.OnChange(source.GetChangeToken, func() {
			m.invokeChanged(source.Name())
		})
		registrations = append(registrations, reg)
	}
	m.lock.Lock()
	m.registrations = registrations
	m.lock.Unlock()

	m.loggers.Debugf("Configuration monitor is watching %d change source(s)", len(sources))
	return m, nil
}

// Get returns the snapshot for the named configuration, building and caching it if necessary. An
// empty name means DefaultName.
//
// Concurrent calls for the same name all receive the same snapshot. An error from the Factory is
// returned unchanged, and the next call will try again.
func (m *Monitor[T]) Get(name string) (T, error) {
	return m.cache.GetOrAdd(name, func() (T, error) {
		return m.factory.Create(name)
	})
}

// CurrentValue returns the snapshot for DefaultName. It is shorthand for Get(DefaultName).
func (m *Monitor[T]) CurrentValue() (T, error) {
	return m.Get(DefaultName)
}

// OnChange registers a function to be called with the new snapshot and its name whenever a change
// notification causes a snapshot to be rebuilt. Listeners are called in the order they were
// registered, on the goroutine that fired the change.
//
// Close the returned Registration to stop receiving changes. Each call to OnChange makes a separate
// registration, even for the same function, and closing one does not affect the others.
func (m *Monitor[T]) OnChange(listener func(value T, name string)) interfaces.Registration {
	return m.listeners.Add(listener)
}

// AddChangeListener subscribes for notifications of rebuilt snapshots, returning a channel that
// receives a ChangeEvent each time. Events are sent after all OnChange listeners have been called.
//
// It is the caller's responsibility to consume values from the channel. Allowing values to
// accumulate in the channel can cause the goroutine that fired the change to block.
func (m *Monitor[T]) AddChangeListener() <-chan interfaces.ChangeEvent[T] {
	return m.broadcaster.AddListener()
}

// RemoveChangeListener unsubscribes a channel that was returned by AddChangeListener, and closes it.
func (m *Monitor[T]) RemoveChangeListener(listener <-chan interfaces.ChangeEvent[T]) {
	m.broadcaster.RemoveListener(listener)
}

// Close unsubscribes from all change sources. Later changes are no longer noticed, and cached
// snapshots stay as they are; Get still works. Registered listeners are kept.
//
// Close is safe to call more than once. It always returns nil.
func (m *Monitor[T]) Close() error {
	m.lock.Lock()
	registrations := m.registrations
	m.registrations = nil
	m.lock.Unlock()

	for _, reg := range registrations {
		reg.Close()
	}
	return nil
}

func (m *Monitor[T]) invokeChanged(name string) {
	m.cache.TryRemove(name)
	value, err := m.Get(name)
	if err != nil {
		m.loggers.Errorf("Unable to rebuild configuration %q after a change: %s", name, err)
		return
	}
	if m.loggers.IsDebugEnabled() {
		m.loggers.Debugf("Configuration %q was rebuilt; notifying %d listener(s)", name, m.listeners.Len())
	}
	for _, listener := range m.listeners.Snapshot() {
		m.callListener(listener, value, name)
	}
	m.broadcaster.Broadcast(interfaces.ChangeEvent[T]{Name: name, Value: value})
}

func (m *Monitor[T]) callListener(listener func(T, string), value T, name string) {
	if m.isolateListenerPanics {
		defer func() {
			if r := recover(); r != nil {
				m.loggers.Errorf("Change listener for configuration %q panicked: %v", name, r)
			}
		}()
	}
	listener(value, name)
}
