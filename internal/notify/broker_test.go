package notify

import (
	"testing"
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe("t1")
	defer b.Unsubscribe(sub)

	for i := 1; i <= 5; i++ {
		b.Publish(Event{Type: EventLevelChanged, TournamentID: "t1", Level: i})
	}

	for i := 1; i <= 5; i++ {
		ev := <-sub.C
		if ev.Level != i {
			t.Fatalf("expected level %d, got %d", i, ev.Level)
		}
	}
}

func TestPublishScopedToTournament(t *testing.T) {
	b := NewBroker()
	subA := b.Subscribe("a")
	subB := b.Subscribe("b")
	defer b.Unsubscribe(subA)
	defer b.Unsubscribe(subB)

	b.Publish(Event{Type: EventStateChanged, TournamentID: "a"})

	if len(subB.C) != 0 {
		t.Errorf("subscriber of tournament b received event for a")
	}
	if len(subA.C) != 1 {
		t.Errorf("expected 1 event for tournament a, got %d", len(subA.C))
	}
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe("t1")
	defer b.Unsubscribe(sub)

	// Fill the buffer and then some; Publish must never block.
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(Event{Type: EventStateChanged, TournamentID: "t1"})
	}

	if len(sub.C) != subscriberBuffer {
		t.Errorf("expected buffer to hold %d events, got %d", subscriberBuffer, len(sub.C))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe("t1")
	b.Unsubscribe(sub)
	b.Unsubscribe(sub) // idempotent

	if _, ok := <-sub.C; ok {
		t.Error("expected channel to be closed after unsubscribe")
	}

	// Publishing to a tournament with no subscribers is a no-op.
	b.Publish(Event{Type: EventStateChanged, TournamentID: "t1"})
}
