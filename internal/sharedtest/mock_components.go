package sharedtest

import (
	"sync"

	"github.com/launchdarkly/go-config-monitor/interfaces"
)

// TestSnapshot is the configuration type used in monitor tests. Every call to MockFactory.Create
// returns a new pointer, so tests can check identity with assert.Same.
type TestSnapshot struct {
	Name    string
	Version int
}

// MockFactory is a Factory that counts its calls per name. Set Error to make Create fail, or
// Panic to make it panic.
type MockFactory struct {
	Error  error
	Panic  interface{}
	calls  map[string]int
	builds int
	lock   sync.Mutex
}

// NewMockFactory creates a MockFactory.
func NewMockFactory() *MockFactory {
	return &MockFactory{calls: make(map[string]int)}
}

// Create is a standard method of Factory.
func (f *MockFactory) Create(name string) (*TestSnapshot, error) {
	f.lock.Lock()
	f.calls[name]++
	f.builds++
	version := f.builds
	err, p := f.Error, f.Panic
	f.lock.Unlock()
	if p != nil {
		panic(p)
	}
	if err != nil {
		return nil, err
	}
	return &TestSnapshot{Name: name, Version: version}, nil
}

// SetError changes the error returned by later calls.
func (f *MockFactory) SetError(err error) {
	f.lock.Lock()
	f.Error = err
	f.lock.Unlock()
}

// Calls returns the number of times Create was called for name.
func (f *MockFactory) Calls(name string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls[name]
}

var _ interfaces.Factory[*TestSnapshot] = (*MockFactory)(nil)
