package handler

import (
	"net/http"
	"strings"

	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/appdev/finance/finance-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// JWTValidator validates JWT tokens and returns the user ID
type JWTValidator interface {
	ValidateToken(token string) (userID int64, err error)
}

// UnreadCounter reports how many unread notifications a user has
type UnreadCounter interface {
	UnreadCount(userID int64) (int64, error)
}

// WebSocketHandler upgrades authenticated users to the live event stream
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	unread         UnreadCounter
	allowedOrigins map[string]bool
	allowAny       bool
	upgrader       ws.Upgrader
	logger         zerolog.Logger
}

// NewWebSocketHandler creates a WebSocketHandler. unread may be nil, in which
// case new connections get no initial notification count.
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, unread UnreadCounter, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		unread:         unread,
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
		logger:         log.With().Str("component", "websocket").Logger(),
	}
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			h.allowAny = true
		}
		h.allowedOrigins[origin] = true
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts requests without an Origin header (non-browser clients)
// and browser requests from a configured CORS origin.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowAny || h.allowedOrigins[origin] {
		return true
	}
	h.logger.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS upgrades GET /ws. Browsers pass the bearer token as ?token= since
// they cannot set headers on the upgrade request.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := wsToken(c.Request())
	if token == "" {
		return NewUnauthorizedError(c, "Missing token")
	}

	userID, err := h.validator.ValidateToken(token)
	if err != nil {
		h.logger.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return NewUnauthorizedError(c, "Invalid or expired token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, userID, h.hub)
	h.hub.Register(client)
	h.syncUnreadCount(client)

	h.logger.Info().
		Int64("user_id", userID).
		Str("client_id", client.ID()).
		Int("connections", h.hub.ClientCount(userID)).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}

// syncUnreadCount sends the current badge count to a fresh connection so it
// does not wait for the next notification to show it.
func (h *WebSocketHandler) syncUnreadCount(client *websocket.Client) {
	if h.unread == nil {
		return
	}
	count, err := h.unread.UnreadCount(client.UserID())
	if err != nil {
		h.logger.Warn().Err(err).Int64("user_id", client.UserID()).Msg("Failed to load unread count")
		return
	}
	event := websocket.NotificationCount(service.UnreadCountMessage{UnreadCount: count})
	if err := client.SendEvent(event); err != nil {
		h.logger.Warn().Err(err).Int64("user_id", client.UserID()).Msg("Failed to send unread count")
	}
}

// wsToken reads the token from ?token= or, for non-browser clients, the Authorization header
func wsToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
