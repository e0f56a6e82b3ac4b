package internal

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Broadcaster is the channel-based side of change notification. AddListener returns a new
// receive-only channel; RemoveListener unsubscribes that channel and closes it; Broadcast sends a
// value to every subscribed channel; Close unsubscribes and closes all of them.
//
// Callback listeners, which must be invoked synchronously and in order, use ListenerRegistry
// instead.
type Broadcaster[V any] struct {
	subscribers []chan V
	lock        sync.Mutex
}

// Arbitrary buffer size to make it less likely that we'll block when broadcasting to channels. It is
// still the consumer's responsibility to keep reading the channel.
const subscriberChannelBufferLength = 10

// NewBroadcaster creates a Broadcaster for the specified value type.
func NewBroadcaster[V any]() *Broadcaster[V] {
	return &Broadcaster[V]{}
}

// AddListener adds a subscriber and returns a channel for it to receive values.
func (b *Broadcaster[V]) AddListener() <-chan V {
	ch := make(chan V, subscriberChannelBufferLength)
	b.lock.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.lock.Unlock()
	return ch
}

// RemoveListener removes a subscriber and closes its channel. The parameter is the same channel
// that was returned by AddListener; an unknown channel is ignored.
func (b *Broadcaster[V]) RemoveListener(ch <-chan V) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for i, s := range b.subscribers {
		if s == ch {
			b.subscribers = slices.Delete(b.subscribers, i, i+1)
			close(s)
			return
		}
	}
}

// HasListeners returns true if there are any current subscribers.
func (b *Broadcaster[V]) HasListeners() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.subscribers) > 0
}

// Broadcast sends a value to all current subscribers. The subscriber list is copied first, so a
// slow consumer does not prevent listeners from being added or removed meanwhile.
func (b *Broadcaster[V]) Broadcast(value V) {
	b.lock.Lock()
	ss := slices.Clone(b.subscribers)
	b.lock.Unlock()
	for _, ch := range ss {
		ch <- value
	}
}

// Close closes all current subscriber channels.
func (b *Broadcaster[V]) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, s := range b.subscribers {
		close(s)
	}
	b.subscribers = nil
}
