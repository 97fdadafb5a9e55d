package event

import (
	"testing"
	"time"
)

func newRunningServer(t *testing.T) EventSender {
	t.Helper()
	s := NewSSEServer()
	go s.Run()
	return s
}

func receiveEvent(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("client channel closed before the event arrived")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestBroadcastReachesRegisteredClient(t *testing.T) {
	s := newRunningServer(t)

	client := make(chan Event, 1)
	s.Register(RecipientTopic("user-1"), client)

	want := Event{Topic: RecipientTopic("user-1"), Type: EventTypeInsert, Payload: "n1"}
	s.Broadcast(want)

	got := receiveEvent(t, client)
	if got.Type != want.Type || got.Payload != want.Payload {
		t.Fatalf("got event %+v, want %+v", got, want)
	}
}

func TestBroadcastIsScopedToTopic(t *testing.T) {
	s := newRunningServer(t)

	mine := make(chan Event, 1)
	theirs := make(chan Event, 1)
	s.Register(RecipientTopic("user-1"), mine)
	s.Register(RecipientTopic("user-2"), theirs)

	s.Broadcast(Event{Topic: RecipientTopic("user-1"), Type: EventTypeInsert, Payload: "n1"})

	receiveEvent(t, mine)
	select {
	case ev := <-theirs:
		t.Fatalf("event leaked across recipient topics: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastFansOutToAllClientsOfTopic(t *testing.T) {
	s := newRunningServer(t)

	// Same recipient with two open dashboards.
	first := make(chan Event, 1)
	second := make(chan Event, 1)
	s.Register(RecipientTopic("user-1"), first)
	s.Register(RecipientTopic("user-1"), second)

	s.Broadcast(Event{Topic: RecipientTopic("user-1"), Type: EventTypeUpdate, Payload: "n1"})

	receiveEvent(t, first)
	receiveEvent(t, second)
}

func TestUnregisterClosesClientChannel(t *testing.T) {
	s := newRunningServer(t)

	client := make(chan Event, 1)
	topic := RecipientTopic("user-1")
	s.Register(topic, client)
	s.Unregister(topic, client)

	select {
	case _, ok := <-client:
		if ok {
			t.Fatal("expected closed channel after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unregister")
	}

	// A second unregister of the same client must be harmless.
	s.Unregister(topic, client)
}

func TestBroadcastAfterUnregisterDoesNotPanic(t *testing.T) {
	s := newRunningServer(t)

	client := make(chan Event, 1)
	topic := RecipientTopic("user-1")
	s.Register(topic, client)
	s.Unregister(topic, client)

	s.Broadcast(Event{Topic: topic, Type: EventTypeDelete, Payload: "n1"})

	// Give the hub a moment to process; nothing to assert beyond no panic.
	time.Sleep(50 * time.Millisecond)
}
