package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	testSecret   = "test-secret-that-is-long-enough-123456"
	testIssuer   = "finance-backend"
	testAudience = "finance-app"
)

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, header string) (*httptest.ResponseRecorder, int64, bool) {
	t.Helper()
	m, err := NewAuthMiddleware(testSecret, testIssuer, testAudience)
	if err != nil {
		t.Fatalf("Failed to create middleware: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/budget", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var userID int64
	called := false
	handler := func(c echo.Context) error {
		called = true
		userID = GetUserID(c)
		return c.String(http.StatusOK, "OK")
	}

	if err := m.Authenticate()(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return rec, userID, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, "42", time.Now().Add(time.Hour))

	rec, userID, called := runAuth(t, "Bearer "+token)

	if !called {
		t.Fatal("Handler was not called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if userID != 42 {
		t.Errorf("Expected user ID 42, got %d", userID)
	}
}

func TestAuthMiddleware_LowercaseBearer(t *testing.T) {
	token := signToken(t, testSecret, "7", time.Now().Add(time.Hour))

	_, userID, called := runAuth(t, "bearer "+token)
	if !called || userID != 7 {
		t.Errorf("Expected lowercase scheme to be accepted, called=%v user=%d", called, userID)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"no token", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signToken(t, "another-secret-another-secret-1234", "42", time.Now().Add(time.Hour))},
		{"expired", "Bearer " + signToken(t, testSecret, "42", time.Now().Add(-time.Hour))},
		{"non-numeric subject", "Bearer " + signToken(t, testSecret, "alice", time.Now().Add(time.Hour))},
		{"zero subject", "Bearer " + signToken(t, testSecret, "0", time.Now().Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, called := runAuth(t, tt.header)
			if called {
				t.Error("Handler should not be called")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", rec.Code)
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	e := echo.New()

	t.Run("returns user id when present", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetRequest(c.Request().WithContext(WithUserID(c.Request().Context(), 99)))

		if got := GetUserID(c); got != 99 {
			t.Errorf("Expected 99, got %d", got)
		}
	})

	t.Run("returns zero when not present", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

		if got := GetUserID(c); got != 0 {
			t.Errorf("Expected 0, got %d", got)
		}
	})
}

func TestGetClaims(t *testing.T) {
	e := echo.New()

	t.Run("returns claims when present", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		claims := &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: "5"},
		}
		c.SetRequest(c.Request().WithContext(context.WithValue(c.Request().Context(), ClaimsKey, claims)))

		result := GetClaims(c)
		if result == nil {
			t.Fatal("Expected claims, got nil")
		}
		if result.RegisteredClaims.Subject != "5" {
			t.Errorf("Expected subject '5', got %q", result.RegisteredClaims.Subject)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

		if GetClaims(c) != nil {
			t.Error("Expected nil claims")
		}
	})
}
