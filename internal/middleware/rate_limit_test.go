package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if rl.Allow("10.0.0.1") {
		t.Error("Request 6 should be rate limited")
	}
	if rl.RetryAfter("10.0.0.1") <= 0 {
		t.Error("Expected a positive retry delay once limited")
	}
}

func TestRateLimiter_DifferentClients(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.Allow("10.0.0.1")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("First client should be rate limited")
	}

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.2") {
			t.Errorf("Second client request %d should be allowed", i+1)
		}
	}
}

func TestNewRateLimiter_DefaultsNonPositive(t *testing.T) {
	rl := NewRateLimiter(0)
	defer rl.Stop()

	if rl.requestsPerMinute != DefaultLoginRateLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultLoginRateLimit, rl.requestsPerMinute)
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(5)
	rl.Stop()
	rl.Stop()
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(60, 2)
	defer rl.Stop()

	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := call("192.0.2.1"); rec.Code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := call("192.0.2.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), echo.MIMEApplicationJSON) {
		t.Errorf("Expected problem details JSON, got %q", rec.Header().Get("Content-Type"))
	}

	if rec := call("192.0.2.2"); rec.Code != http.StatusOK {
		t.Errorf("Other client: expected 200, got %d", rec.Code)
	}
}
