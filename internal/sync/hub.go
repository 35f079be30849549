// Package sync fans transaction change notifications out to connected
// clients. Each browser tab subscribes for one owner; when a transaction
// for that owner changes, every subscriber gets a nudge and re-fetches
// its view.
package sync

import (
	"context"
	"sync"

	"vibeledger/internal/amqp"
)

// Event is the notification delivered to subscribers. It intentionally
// carries no amounts: clients refresh from the server on receipt, so the
// payload only needs to identify what changed.
type Event struct {
	Owner string
	TxID  string
	Kind  string
}

// Hub tracks per-owner subscriber channels.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for the given owner. The returned cancel
// function removes the subscription and closes the channel; it is safe to
// call more than once.
func (h *Hub) Subscribe(owner string) (<-chan Event, func()) {
	ch := make(chan Event, 8)

	h.mu.Lock()
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[chan Event]struct{})
	}
	h.subs[owner][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[owner], ch)
			if len(h.subs[owner]) == 0 {
				delete(h.subs, owner)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish notifies every subscriber for the event's owner. Slow
// subscribers whose buffers are full are skipped rather than blocked on;
// they catch up on their next periodic refresh.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[ev.Owner] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers reports how many channels are registered for an owner.
func (h *Hub) Subscribers(owner string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[owner])
}

// Run feeds the hub from a broker consumer until ctx is cancelled. It is
// used when multiple server instances share a broker; a single instance
// publishes to the hub directly.
func (h *Hub) Run(ctx context.Context, client *amqp.Client) error {
	return client.Consume(ctx, func(msg *amqp.TransactionChanged) error {
		h.Publish(Event{Owner: msg.Owner, TxID: msg.ID, Kind: msg.Kind})
		return nil
	})
}
