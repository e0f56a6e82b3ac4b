package internal

import (
	"errors"
	"sync"
)

// ErrBuildPanicked is returned by Lazy.Value to callers that were waiting on a build which
// panicked. The panic itself propagates only to the goroutine that ran the build.
var ErrBuildPanicked = errors.New("configuration build panicked")

// Lazy holds a value that is built on first use. All callers of Value share the result of a
// single build, including an error.
type Lazy[T any] struct {
	once   sync.Once
	create func() (T, error)
	value  T
	err    error
}

// NewLazy creates a Lazy that will call create the first time Value is called.
func NewLazy[T any](create func() (T, error)) *Lazy[T] {
	return &Lazy[T]{create: create}
}

// NewLazyValue creates a Lazy that already holds a value.
func NewLazyValue[T any](value T) *Lazy[T] {
	l := &Lazy[T]{}
	l.once.Do(func() { l.value = value })
	return l
}

// Value builds the value if necessary and returns it.
func (l *Lazy[T]) Value() (T, error) {
	l.once.Do(func() {
		completed := false
		defer func() {
			if !completed {
				l.err = ErrBuildPanicked
			}
			l.create = nil
		}()
		l.value, l.err = l.create()
		completed = true
	})
	return l.value, l.err
}

// ResolveLazy returns the entry's value. If the build fails, or panics, discard is called before
// returning so that the failure is not kept; a panic still propagates after discard.
func ResolveLazy[T any](entry *Lazy[T], discard func()) (T, error) {
	succeeded := false
	defer func() {
		if !succeeded {
			discard()
		}
	}()
	value, err := entry.Value()
	if err == nil {
		succeeded = true
	}
	return value, err
}
