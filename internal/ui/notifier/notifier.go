// Package notifier provides a broadcast mechanism for state change signals.
package notifier

import "sync"

// MergeFunc combines a value still pending in a listener's buffer with a
// newer one. It is used when a listener falls behind.
type MergeFunc[T any] func(pending, next T) T

// Notifier broadcasts values to all subscribed listeners.
// Each listener has a single-slot buffer; when the slot is occupied the
// pending value is merged with the new one, so Broadcast never blocks and
// slow listeners observe a coalesced value instead of losing it.
type Notifier[T any] struct {
	mu        sync.Mutex
	listeners map[chan T]struct{}
	merge     MergeFunc[T]
	closed    bool
}

// New creates a Notifier. A nil merge keeps the newest value.
func New[T any](merge MergeFunc[T]) *Notifier[T] {
	if merge == nil {
		merge = func(_, next T) T { return next }
	}
	return &Notifier[T]{
		listeners: make(map[chan T]struct{}),
		merge:     merge,
	}
}

// NewPing creates a Notifier that carries no payload. Listeners receive an
// empty struct when updates are available and should re-query their source.
func NewPing() *Notifier[struct{}] {
	return New[struct{}](nil)
}

// Subscribe returns a channel that receives broadcast values.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
// Subscribing to a closed Notifier returns an already closed channel.
func (n *Notifier[T]) Subscribe() chan T {
	ch := make(chan T, 1)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		close(ch)
		return ch
	}
	n.listeners[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier[T]) Unsubscribe(ch chan T) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Broadcast delivers v to every listener without blocking.
func (n *Notifier[T]) Broadcast(v T) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.listeners {
		select {
		case ch <- v:
			continue
		default:
		}
		// Buffer full: fold the pending value into the new one. Only Broadcast
		// sends, and it holds the lock, so the slot is free after the drain
		// unless the listener already consumed it.
		select {
		case pending := <-ch:
			ch <- n.merge(pending, v)
		default:
			ch <- v
		}
	}
}

// Len reports the number of active listeners.
func (n *Notifier[T]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// Close closes every listener channel. Later Subscribe calls return closed
// channels and Broadcast becomes a no-op.
func (n *Notifier[T]) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for ch := range n.listeners {
		close(ch)
	}
	n.listeners = make(map[chan T]struct{})
}
