// Package broadcast implements cancellable multi-subscriber push streams.
// Each subscriber observes the latest published value: a slow consumer is
// never blocked on, it simply skips intermediate values.
package broadcast

import "sync"

// Broadcaster fans out published values to all active subscriptions.
type Broadcaster[T any] struct {
	mu      sync.Mutex
	subs    map[int]chan T
	nextID  int
	last    T
	hasLast bool
	closed  bool
}

func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		subs: make(map[int]chan T),
	}
}

// Publish delivers v to every subscription, replacing any undelivered
// previous value. It is a no-op after Close.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.last = v
	b.hasLast = true

	for _, ch := range b.subs {
		// Drop the stale value if the subscriber has not drained it yet.
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Subscribe registers a new subscription. The latest published value, if any,
// is replayed immediately.
func (b *Broadcaster[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 1)
	if b.closed {
		close(ch)
		return &Subscription[T]{C: ch, cancel: func() {}}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	if b.hasLast {
		ch <- b.last
	}

	return &Subscription[T]{
		C: ch,
		cancel: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		},
	}
}

// Close terminates every subscription. Closed channels signal stream
// termination to consumers.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscription is one consumer's view of a broadcast stream. C is closed when
// the subscription or the broadcaster is closed; consumers must resubscribe
// to continue observing.
type Subscription[T any] struct {
	C      chan T
	cancel func()
}

// Close cancels the subscription and closes C.
func (s *Subscription[T]) Close() {
	s.cancel()
}
