package sync

import (
	"testing"
	"time"
)

func TestHubDeliversToOwner(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("user-1")
	defer cancel()

	hub.Publish(Event{Owner: "user-1", TxID: "tx-1", Kind: "income"})

	select {
	case ev := <-ch:
		if ev.TxID != "tx-1" || ev.Kind != "income" {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestHubScopesByOwner(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("user-1")
	defer cancel()

	hub.Publish(Event{Owner: "user-2", TxID: "tx-9"})

	select {
	case ev := <-ch:
		t.Errorf("received event for another owner: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	ch1, cancel1 := hub.Subscribe("user-1")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe("user-1")
	defer cancel2()

	hub.Publish(Event{Owner: "user-1", TxID: "tx-1"})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive event", i)
		}
	}
}

func TestHubCancelRemovesSubscription(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe("user-1")

	if got := hub.Subscribers("user-1"); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	cancel()
	cancel() // idempotent

	if got := hub.Subscribers("user-1"); got != 0 {
		t.Errorf("expected 0 subscribers after cancel, got %d", got)
	}

	// Publishing after cancel must not panic on the closed channel.
	hub.Publish(Event{Owner: "user-1", TxID: "tx-1"})
}

func TestHubSkipsFullBuffers(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe("user-1")
	defer cancel()

	// More events than the buffer holds; Publish must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(Event{Owner: "user-1", TxID: "tx"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}
