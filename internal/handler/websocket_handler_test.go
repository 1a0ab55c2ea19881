package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/appdev/finance/finance-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockJWTValidator accepts one token and rejects everything else
type mockJWTValidator struct {
	token  string
	userID int64
}

func (m *mockJWTValidator) ValidateToken(token string) (int64, error) {
	if token != m.token {
		return 0, errors.New("invalid token")
	}
	return m.userID, nil
}

type fixedUnreadCounter struct {
	count int64
	err   error
}

func (f fixedUnreadCounter) UnreadCount(userID int64) (int64, error) {
	return f.count, f.err
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://finance.app"}

func newWSServer(t *testing.T, hub *websocket.Hub, unread UnreadCounter) string {
	t.Helper()
	e := echo.New()
	h := NewWebSocketHandler(hub, &mockJWTValidator{token: "good", userID: 7}, unread, testAllowedOrigins)
	e.GET("/ws", h.HandleWS)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func readEvent(t *testing.T, conn *ws.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(message)
}

func TestHandleWS_RejectsMissingOrInvalidToken(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &mockJWTValidator{token: "good", userID: 1}, nil, testAllowedOrigins)

	for _, target := range []string{"/ws", "/ws?token=forged"} {
		t.Run(target, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, target, nil, 0)

			require.NoError(t, h.HandleWS(c))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, http.StatusUnauthorized, decodeProblem(t, rec).Status)
		})
	}
}

func TestHandleWS_AuthPassesBeforeUpgrade(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &mockJWTValidator{token: "good", userID: 1}, nil, testAllowedOrigins)
	c, rec := newContext(http.MethodGet, "/ws?token=good", nil, 0)

	// a plain GET is not an upgrade request, so gorilla refuses it after auth succeeds
	err := h.HandleWS(c)
	assert.Error(t, err)
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestWSToken(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"query parameter", "/ws?token=abc", "", "abc"},
		{"authorization header", "/ws", "Bearer xyz", "xyz"},
		{"lowercase scheme", "/ws", "bearer xyz", "xyz"},
		{"query wins", "/ws?token=abc", "Bearer xyz", "abc"},
		{"basic auth ignored", "/ws", "Basic Zm9vOmJhcg==", ""},
		{"nothing", "/ws", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			assert.Equal(t, tt.want, wsToken(req))
		})
	}
}

func TestCheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &mockJWTValidator{}, nil, testAllowedOrigins)
	open := NewWebSocketHandler(websocket.NewHub(), &mockJWTValidator{}, nil, []string{"*"})

	tests := []struct {
		name    string
		handler *WebSocketHandler
		origin  string
		want    bool
	}{
		{"configured origin", h, "http://localhost:3000", true},
		{"second configured origin", h, "https://finance.app", true},
		{"foreign origin", h, "https://evil.com", false},
		{"no origin header", h, "", true},
		{"wildcard", open, "https://anything.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, tt.handler.checkOrigin(req))
		})
	}
}

func TestHandleWS_SendsUnreadCountOnConnect(t *testing.T) {
	hub := websocket.NewHub()
	defer hub.CloseAll()
	url := newWSServer(t, hub, fixedUnreadCounter{count: 4})

	conn, _, err := ws.DefaultDialer.Dial(url+"?token=good", nil)
	require.NoError(t, err)
	defer conn.Close()

	message := readEvent(t, conn)
	assert.Contains(t, message, `"type":"notification.count"`)
	assert.Contains(t, message, `"unreadCount":4`)
}

func TestHandleWS_CountFailureStillConnects(t *testing.T) {
	hub := websocket.NewHub()
	defer hub.CloseAll()
	url := newWSServer(t, hub, fixedUnreadCounter{err: errors.New("db down")})

	conn, _, err := ws.DefaultDialer.Dial(url+"?token=good", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(7) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(7, websocket.TransactionCreated(map[string]int64{"id": 11}))
	assert.Contains(t, readEvent(t, conn), `"type":"transaction.created"`)
}

func TestHandleWS_HeaderTokenAndUserScoping(t *testing.T) {
	hub := websocket.NewHub()
	defer hub.CloseAll()
	url := newWSServer(t, hub, nil)

	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer good")
	conn, _, err := ws.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(7) == 1 }, time.Second, 10*time.Millisecond)

	// another user's event must not reach this connection
	hub.Publish(8, websocket.BudgetUpdated(map[string]string{"amount": "1.00"}))
	hub.Publish(7, websocket.NotificationCount(map[string]int{"unreadCount": 3}))

	message := readEvent(t, conn)
	assert.Contains(t, message, `"type":"notification.count"`)
	assert.Contains(t, message, `"unreadCount":3`)
}

func TestHandleWS_BadTokenRefusesHandshake(t *testing.T) {
	hub := websocket.NewHub()
	url := newWSServer(t, hub, nil)

	_, resp, err := ws.DefaultDialer.Dial(url+"?token=forged", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, hub.ClientCount(7))
}
