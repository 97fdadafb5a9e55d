package event

import (
	"fmt"
)

// Event is one row-level change pushed to subscribed clients.
type Event struct {
	Topic   string      // e.g. "user:abc"
	Type    EventType   // insert, update or delete
	Payload interface{} // the affected notification record
}

type EventType string

const (
	EventTypeInsert EventType = "insert"
	EventTypeUpdate EventType = "update"
	EventTypeDelete EventType = "delete"
)

// RecipientTopic returns the per-recipient topic name. Every authenticated
// recipient gets exactly one topic, scoped server-side to their own rows.
func RecipientTopic(recipientID string) string {
	return fmt.Sprintf("user:%s", recipientID)
}

// EventSender is the interface for the server that pushes events to clients.
type EventSender interface {
	Register(topic string, client chan Event)
	Unregister(topic string, client chan Event)
	Broadcast(event Event)
	Run()
}
