package internal

import (
	"sync"

	"github.com/launchdarkly/go-config-monitor/interfaces"
)

// ListenerRegistry is an ordered list of callback listeners.
//
// Each call to Add creates a distinct record, and the Registration it returns removes exactly that
// record. Adding the same function twice therefore yields two independent registrations.
type ListenerRegistry[F any] struct {
	records []*listenerRecord[F]
	lock    sync.Mutex
}

type listenerRecord[F any] struct {
	fn       F
	registry *ListenerRegistry[F]
}

// NewListenerRegistry creates an empty ListenerRegistry.
func NewListenerRegistry[F any]() *ListenerRegistry[F] {
	return &ListenerRegistry[F]{}
}

// Add appends a listener and returns the handle that removes it.
func (r *ListenerRegistry[F]) Add(fn F) interfaces.Registration {
	rec := &listenerRecord[F]{fn: fn, registry: r}
	r.lock.Lock()
	r.records = append(r.records, rec)
	r.lock.Unlock()
	return rec
}

// Snapshot returns the currently registered listeners in registration order. Changes made to the
// registry afterward do not affect the returned slice.
func (r *ListenerRegistry[F]) Snapshot() []F {
	r.lock.Lock()
	defer r.lock.Unlock()
	ret := make([]F, 0, len(r.records))
	for _, rec := range r.records {
		ret = append(ret, rec.fn)
	}
	return ret
}

// Len returns the number of registered listeners.
func (r *ListenerRegistry[F]) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.records)
}

// Clear removes every listener.
func (r *ListenerRegistry[F]) Clear() {
	r.lock.Lock()
	r.records = nil
	r.lock.Unlock()
}

func (r *ListenerRegistry[F]) remove(rec *listenerRecord[F]) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for i, x := range r.records {
		if x == rec {
			copy(r.records[i:], r.records[i+1:])
			r.records[len(r.records)-1] = nil
			r.records = r.records[:len(r.records)-1]
			return
		}
	}
}

// Close removes this record from its registry. Closing it again does nothing.
func (rec *listenerRecord[F]) Close() {
	rec.registry.remove(rec)
}
