package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	UserID() int64
	Send(data []byte) error
	Close() error
}

// Hub tracks live connections per user. A user may hold several
// connections (tabs, devices); every one of them receives the user's events.
// It is safe for concurrent use
type Hub struct {
	// users maps user ID to a map of client ID to client
	users map[int64]map[string]ClientInterface
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		users: make(map[int64]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its user
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]ClientInterface)
	}
	h.users[userID][client.ID()] = client

	log.Debug().
		Int64("user_id", userID).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	clientID := client.ID()

	clients, ok := h.users[userID]
	if !ok {
		return
	}
	if _, exists := clients[clientID]; !exists {
		return
	}
	delete(clients, clientID)
	if len(clients) == 0 {
		delete(h.users, userID)
	}

	log.Debug().
		Int64("user_id", userID).
		Str("client_id", clientID).
		Msg("WebSocket client unregistered")
}

// SendToUser delivers an event to every connection of a user.
// Users without a live connection are skipped silently.
func (h *Hub) SendToUser(userID int64, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int64("user_id", userID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.users[userID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	targets := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int64("user_id", userID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Int64("user_id", userID).
		Str("event_type", event.Type).
		Int("client_count", len(targets)).
		Msg("Sent event to user")
}

// ClientCount returns the number of live connections of a user
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// TotalClientCount returns the number of live connections across all users
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.users {
		total += len(clients)
	}
	return total
}

// CloseAll closes every connection. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	all := h.users
	h.users = make(map[int64]map[string]ClientInterface)
	h.mu.Unlock()

	for _, clients := range all {
		for _, c := range clients {
			_ = c.Close()
		}
	}
}
