package changetoken

import (
	"sync"

	"github.com/launchdarkly/go-config-monitor/interfaces"
)

// OnChange subscribes consumer to every change reported by the tokens that producer returns.
//
// It registers on producer's current token. Each time that token fires, it asks producer for the
// next token, calls consumer, and then registers on the new token. The new token is obtained before
// consumer runs so that a change happening during consumer is not missed; registration happens even
// if consumer panics.
//
// Closing the returned Registration detaches from the current token; consumer is never called after
// Close returns, except for a call that was already in progress. A nil token from producer ends the
// subscription.
func OnChange(producer func() interfaces.ChangeToken, consumer func()) interfaces.Registration {
	r := &changeTokenRegistration{producer: producer, consumer: consumer}
	r.register(producer())
	return r
}

type changeTokenRegistration struct {
	producer func() interfaces.ChangeToken
	consumer func()
	current  interfaces.Registration

	// generation counts calls to register, so that a registration made by a nested call (when a
	// token had already fired) is not overwritten by the outer one.
	generation uint64
	closed     bool
	lock       sync.Mutex
}

func (r *changeTokenRegistration) onTokenFired() {
	if r.isClosed() {
		return
	}
	next := r.producer()
	defer r.register(next)
	r.consumer()
}

func (r *changeTokenRegistration) register(token interfaces.ChangeToken) {
	if token == nil {
		return
	}
	r.lock.Lock()
	if r.closed {
		r.lock.Unlock()
		return
	}
	r.generation++
	generation := r.generation
	r.lock.Unlock()

	reg := token.RegisterChangeCallback(r.onTokenFired)

	r.lock.Lock()
	if r.closed {
		r.lock.Unlock()
		reg.Close()
		return
	}
	if r.generation == generation {
		r.current = reg
	}
	r.lock.Unlock()
}

func (r *changeTokenRegistration) isClosed() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.closed
}

// Close is a standard method of Registration.
func (r *changeTokenRegistration) Close() {
	r.lock.Lock()
	if r.closed {
		r.lock.Unlock()
		return
	}
	r.closed = true
	current := r.current
	r.current = nil
	r.lock.Unlock()

	if current != nil {
		current.Close()
	}
}
