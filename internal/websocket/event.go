package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeCount   EventType = "count"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeNotification EntityType = "notification"
	EntityTypeTransaction  EntityType = "transaction"
	EntityTypeBudget       EntityType = "budget"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "notification.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "notification"
	Payload   interface{} `json:"payload"`   // Entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// NotificationCreated creates a notification.created event
func NotificationCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeNotification, payload)
}

// NotificationCount creates a notification.count event carrying the unread count
func NotificationCount(payload interface{}) Event {
	return NewEvent(EventTypeCount, EntityTypeNotification, payload)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// BudgetUpdated creates a budget.updated event
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}
