package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod is the interval for sending pings (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is maximum message size allowed from peer
	maxMessageSize = 512

	// sendBufferSize bounds queued events per connection before the client counts as slow
	sendBufferSize = 64
)

// Client represents a single WebSocket connection
type Client struct {
	id        string
	userID    int64
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	logger    zerolog.Logger
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, userID int64, hub *Hub) *Client {
	id := uuid.New().String()
	return &Client{
		id:     id,
		userID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
		logger: log.With().
			Str("component", "websocket").
			Str("client_id", id).
			Int64("user_id", userID).
			Logger(),
	}
}

// SendEvent encodes an event and queues it for this connection only
func (c *Client) SendEvent(event Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return err
	}
	return c.Send(data)
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// UserID returns the ID of the user owning the connection
func (c *Client) UserID() int64 {
	return c.userID
}

// Send queues a message to be sent to the client
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer is full, client is too slow
		return ErrClientClosed
	}
}

// Close closes the client connection
// Safe to call multiple times from different goroutines
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// ReadPump pumps messages from the WebSocket connection
// This should be run in a goroutine
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("WebSocket unexpected close")
			}
			break
		}
		// push-only: inbound frames are discarded
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
// This should be run in a goroutine
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, hub closed this client
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
