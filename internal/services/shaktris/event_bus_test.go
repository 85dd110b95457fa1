package shaktris

import "testing"

func TestEventBusPublishAssignsMonotonicSequenceNumbers(t *testing.T) {
	b := NewEventBus("g1")
	sub := b.Subscribe("p1")

	first := b.Publish(Event{Type: EventPlayerJoined})
	second := b.Publish(Event{Type: EventTetrominoPlaced})

	if second.Seq <= first.Seq {
		t.Fatalf("expected strictly increasing sequence numbers, got %d then %d", first.Seq, second.Seq)
	}

	got1 := <-sub.Events
	got2 := <-sub.Events
	if got1.Type != EventPlayerJoined || got2.Type != EventTetrominoPlaced {
		t.Fatalf("expected events delivered in publish order, got %v then %v", got1.Type, got2.Type)
	}
}

func TestEventBusDropsEventsForAFullSubscriberWithoutBlocking(t *testing.T) {
	b := NewEventBus("g1")
	b.Subscribe("slow")

	// subscriberBufferSize+few extra publishes: the slow subscriber never
	// drains its channel, so Publish must keep returning rather than block.
	for i := 0; i < subscriberBufferSize+5; i++ {
		b.Publish(Event{Type: EventStateSnapshot})
	}
}

func TestEventBusDisconnectsASubscriberPastTheDropThreshold(t *testing.T) {
	b := NewEventBus("g1")
	b.Subscribe("slow")

	for i := 0; i < subscriberBufferSize+maxDroppedBeforeDisconnect+1; i++ {
		b.Publish(Event{Type: EventStateSnapshot})
	}

	disconnected := b.Disconnected()
	if len(disconnected) != 1 || disconnected[0] != "slow" {
		t.Fatalf("expected \"slow\" to be reported disconnected, got %v", disconnected)
	}

	// A second call should report nothing further: Disconnected removes
	// what it reports.
	if again := b.Disconnected(); len(again) != 0 {
		t.Fatalf("expected no further disconnects on a second call, got %v", again)
	}
}

func TestEventBusUnsubscribeStopsDelivery(t *testing.T) {
	b := NewEventBus("g1")
	sub := b.Subscribe("p1")
	b.Unsubscribe("p1")

	b.Publish(Event{Type: EventPlayerLeft})

	select {
	case ev := <-sub.Events:
		t.Fatalf("expected no event after unsubscribe, got %v", ev.Type)
	default:
	}
}
