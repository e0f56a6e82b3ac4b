package internal

import (
	"sync/atomic"
)

// AtomicFlag is a boolean that can be set once and read from any goroutine. It is used for the
// "closed" state of components whose Close method must be idempotent. (The go.mod minimum
// version predates atomic.Bool.)
type AtomicFlag struct {
	value int32
}

// IsSet returns true if the flag has been set.
func (f *AtomicFlag) IsSet() bool {
	return atomic.LoadInt32(&f.value) != 0
}

// SetOnce sets the flag, and returns true only for the caller that changed it from unset to set.
func (f *AtomicFlag) SetOnce() bool {
	return atomic.CompareAndSwapInt32(&f.value, 0, 1)
}
