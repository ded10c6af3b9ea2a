// SPDX-License-Identifier: MIT

package event

import "sync"

// Handler receives drained events.
type Handler func(Event)

type subscription struct {
	id    uint64
	kinds map[Kind]struct{} // empty means all kinds
	fn    Handler
}

// Bus is an explicit outbound queue with registered subscribers.
// Publish and Subscribe are safe for concurrent use; Drain delivers on the
// calling goroutine, so handlers need no locking of their own.
type Bus struct {
	mu     sync.Mutex
	queue  []Event
	subs   []subscription
	nextID uint64
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for the given kinds (all kinds when none are given)
// and returns a function that removes the subscription.
func (b *Bus) Subscribe(fn Handler, kinds ...Kind) (unsubscribe func()) {
	if fn == nil {
		panic("event: Subscribe(nil)")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscription{id: b.nextID, fn: fn}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = struct{}{}
		}
	}
	b.subs = append(b.subs, sub)

	id := sub.id
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish appends e to the queue. It never blocks on consumers.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	b.mu.Unlock()
}

// Pending reports the number of queued, undelivered events.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Drain delivers every queued event to the matching subscribers, in
// publication order, and returns the number of events drained. Events
// published by handlers during a drain are delivered in the next Drain.
func (b *Bus) Drain() int {
	b.mu.Lock()
	batch := b.queue
	b.queue = nil
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, e := range batch {
		for _, s := range subs {
			if s.kinds != nil {
				if _, ok := s.kinds[e.Kind]; !ok {
					continue
				}
			}
			s.fn(e)
		}
	}
	return len(batch)
}

// Discard drops the queue without delivering it.
func (b *Bus) Discard() {
	b.mu.Lock()
	b.queue = nil
	b.mu.Unlock()
}
