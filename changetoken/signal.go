package changetoken

import (
	"sync"

	"github.com/launchdarkly/go-config-monitor/interfaces"
)

// Signal is a reusable ChangeTokenSource. GetChangeToken hands out the current Trigger, and Notify
// fires it and replaces it with a fresh one, so every holder of the old token hears about the
// change exactly once.
//
// The file, stream, and polling change sources are all built on Signal.
type Signal struct {
	name    string
	current *Trigger
	lock    sync.Mutex
}

// NewSignal creates a Signal for the named configuration.
func NewSignal(name string) *Signal {
	return &Signal{name: name, current: NewTrigger()}
}

// Name is a standard method of ChangeTokenSource.
func (s *Signal) Name() string {
	return s.name
}

// GetChangeToken is a standard method of ChangeTokenSource.
func (s *Signal) GetChangeToken() interfaces.ChangeToken {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.current
}

// Notify fires the current token. The replacement token is installed before any callbacks run, so
// a consumer that asks for a new token from inside its callback gets one that has not fired.
func (s *Signal) Notify() {
	s.lock.Lock()
	previous := s.current
	s.current = NewTrigger()
	s.lock.Unlock()
	previous.Fire()
}
