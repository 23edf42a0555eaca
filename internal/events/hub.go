package events

import (
	"sync"
	"time"
)

// Kinds of lending events published on the hub.
const (
	KindBorrowed = "borrowed"
	KindReturned = "returned"
)

// LendingEvent describes one borrow or return as it happened.
type LendingEvent struct {
	Kind        string    `json:"kind"`
	BorrowingID int64     `json:"borrowingId"`
	BookID      int64     `json:"bookId"`
	BookTitle   string    `json:"bookTitle"`
	BorrowerID  int64     `json:"borrowerId"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Hub fans lending events out to subscribers. Slow subscribers drop events
// rather than block the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan LendingEvent]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[chan LendingEvent]struct{})}
}

// Subscribe registers a new subscriber and returns its channel together
// with an unsubscribe function.
func (h *Hub) Subscribe() (<-chan LendingEvent, func()) {
	ch := make(chan LendingEvent, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with room in its buffer
func (h *Hub) Publish(event LendingEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
