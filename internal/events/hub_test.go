package events

import (
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	event := LendingEvent{Kind: KindBorrowed, BorrowingID: 1, BookID: 2, BorrowerID: 3, OccurredAt: time.Now()}
	hub.Publish(event)

	select {
	case got := <-ch:
		if got.Kind != KindBorrowed || got.BorrowingID != 1 {
			t.Errorf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event on subscriber channel")
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe()

	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}

	cancel()
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after cancel, got %d", hub.SubscriberCount())
	}

	// Cancel is idempotent
	cancel()
}

func TestHubSlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	// Overfill the subscriber buffer; Publish must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(LendingEvent{Kind: KindReturned, BorrowingID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// The buffer holds what fit; the rest were dropped
	if got := len(ch); got == 0 || got > 16 {
		t.Fatalf("expected a full buffer of events, got %d", got)
	}
}
