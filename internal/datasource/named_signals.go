package datasource

import (
	"sync"

	"github.com/launchdarkly/go-config-monitor/changetoken"
	"github.com/launchdarkly/go-config-monitor/interfaces"
)

// NamedSignals holds one changetoken.Signal per configuration name, created on first use. It backs
// change sources that learn the name of the changed configuration from the remote end.
type NamedSignals struct {
	signals map[string]*changetoken.Signal
	order   []string
	lock    sync.Mutex
}

// NewNamedSignals creates an empty NamedSignals.
func NewNamedSignals() *NamedSignals {
	return &NamedSignals{signals: make(map[string]*changetoken.Signal)}
}

// Get returns the Signal for name, creating it if necessary.
func (n *NamedSignals) Get(name string) *changetoken.Signal {
	n.lock.Lock()
	defer n.lock.Unlock()
	if s, ok := n.signals[name]; ok {
		return s
	}
	s := changetoken.NewSignal(name)
	n.signals[name] = s
	n.order = append(n.order, name)
	return s
}

// Source returns a ChangeTokenSource for name.
func (n *NamedSignals) Source(name string) interfaces.ChangeTokenSource {
	return n.Get(name)
}

// Notify fires the current token for name. Nothing is locked while callbacks run.
func (n *NamedSignals) Notify(name string) {
	n.Get(name).Notify()
}

// NotifyAll fires the current token of every name seen so far, in the order the names were first
// used.
func (n *NamedSignals) NotifyAll() {
	n.lock.Lock()
	all := make([]*changetoken.Signal, 0, len(n.order))
	for _, name := range n.order {
		all = append(all, n.signals[name])
	}
	n.lock.Unlock()
	for _, s := range all {
		s.Notify()
	}
}
