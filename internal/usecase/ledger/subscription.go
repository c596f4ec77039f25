package ledger

import (
	"sync"
)

// Subscription is the handle returned by Subscribe.
// Unsubscribe is idempotent.
type Subscription struct {
	id   uint64
	n    *notifier
	once sync.Once
}

// Unsubscribe stops further callbacks for this subscription
func (s *Subscription) Unsubscribe() {
	if s == nil || s.n == nil {
		return
	}
	s.once.Do(func() {
		s.n.remove(s.id)
	})
}

type subscriber struct {
	id uint64
	fn func()
}

// notifier fans a payload-free "state changed" event out to subscribers
// in registration order.
type notifier struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
}

func (n *notifier) subscribe(fn func()) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.subs = append(n.subs, subscriber{id: n.nextID, fn: fn})
	return &Subscription{id: n.nextID, n: n}
}

func (n *notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// publish calls every subscriber registered at the time of the call.
// Callbacks may subscribe, unsubscribe or query the ledger.
func (n *notifier) publish() {
	n.mu.Lock()
	snapshot := make([]subscriber, len(n.subs))
	copy(snapshot, n.subs)
	n.mu.Unlock()

	for _, s := range snapshot {
		s.fn()
	}
}

func (n *notifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
