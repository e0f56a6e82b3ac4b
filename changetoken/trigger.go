package changetoken

import (
	"sync"

	"github.com/launchdarkly/go-config-monitor/interfaces"
	"github.com/launchdarkly/go-config-monitor/internal"
)

// Trigger is a ChangeToken that fires when Fire is called. It fires at most once.
type Trigger struct {
	callbacks *internal.ListenerRegistry[func()]
	fired     bool
	lock      sync.Mutex
}

// NewTrigger creates a Trigger that has not fired yet.
func NewTrigger() *Trigger {
	return &Trigger{callbacks: internal.NewListenerRegistry[func()]()}
}

// HasChanged is a standard method of ChangeToken.
func (t *Trigger) HasChanged() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.fired
}

// RegisterChangeCallback is a standard method of ChangeToken.
func (t *Trigger) RegisterChangeCallback(callback func()) interfaces.Registration {
	t.lock.Lock()
	if t.fired {
		t.lock.Unlock()
		callback()
		return noRegistration{}
	}
	reg := t.callbacks.Add(callback)
	t.lock.Unlock()
	return reg
}

// Fire marks the token as changed and calls every registered callback in registration order, on
// the calling goroutine. Calls after the first do nothing.
func (t *Trigger) Fire() {
	t.lock.Lock()
	if t.fired {
		t.lock.Unlock()
		return
	}
	t.fired = true
	callbacks := t.callbacks.Snapshot()
	t.callbacks.Clear()
	t.lock.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

type noRegistration struct{}

func (noRegistration) Close() {}

type neverChangesToken struct{}

// NeverChanges returns a ChangeToken that never fires.
func NeverChanges() interfaces.ChangeToken {
	return neverChangesToken{}
}

func (neverChangesToken) HasChanged() bool { return false }

func (neverChangesToken) RegisterChangeCallback(func()) interfaces.Registration {
	return noRegistration{}
}
