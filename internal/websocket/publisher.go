package websocket

// EventPublisher defines the interface for publishing events to a user's live connections
type EventPublisher interface {
	// Publish sends an event to every connection of the user
	Publish(userID int64, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher
func (h *Hub) Publish(userID int64, event Event) {
	h.SendToUser(userID, event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(userID int64, event Event) {}
