// Package eventbus implements the event.Publisher port with bounded,
// per-subscriber, drop-oldest delivery so a slow subscriber never stalls the
// emitter.
package eventbus

import (
	"sync"

	"github.com/toolmesh/fleet/internal/domain/event"
)

const defaultBufferSize = 64

// Bus is a concurrency-safe, multi-subscriber event.Publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan event.Event]event.Filter
	bufferSize  int
	closed      bool
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithBufferSize overrides the per-subscriber channel capacity.
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// New creates a Bus ready for use.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[chan event.Event]event.Filter),
		bufferSize:  defaultBufferSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers e to every subscriber whose filter accepts it. When a
// subscriber's buffer is full, the oldest queued event is dropped to make
// room — the publisher itself never blocks.
func (b *Bus) Publish(e event.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for ch, filter := range b.subscribers {
		if filter != nil && !filter(e) {
			continue
		}
		deliver(ch, e)
	}
}

// deliver attempts a non-blocking send, dropping the oldest buffered event
// and retrying once if the channel is full.
func deliver(ch chan event.Event, e event.Event) {
	select {
	case ch <- e:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- e:
	default:
	}
}

// Subscribe registers a new subscriber. A nil filter is a wildcard
// subscription that receives every event.
func (b *Bus) Subscribe(filter event.Filter) <-chan event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan event.Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[ch] = filter
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call more
// than once for the same channel.
func (b *Bus) Unsubscribe(ch <-chan event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subscribers {
		if sub == ch {
			delete(b.subscribers, sub)
			close(sub)
			return
		}
	}
}

// Close shuts down the bus, closing every subscriber channel. Close is
// idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subscribers {
		close(sub)
		delete(b.subscribers, sub)
	}
}

// SubscriberCount reports the number of active subscribers, mainly for tests
// and diagnostics.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
