package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// UserIDKey is the context key for the authenticated user's ID (token subject)
	UserIDKey contextKey = "user_id"
)

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator *validator.Validator
}

// NewAuthMiddleware creates an AuthMiddleware for HS256 tokens signed with secret
func NewAuthMiddleware(secret, issuer, audience string) (*AuthMiddleware, error) {
	jwtValidator, err := NewTokenValidator(secret, issuer, audience)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{validator: jwtValidator}, nil
}

// NewTokenValidator builds the validator shared by HTTP and WebSocket authentication
func NewTokenValidator(secret, issuer, audience string) (*validator.Validator, error) {
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(secret), nil
	}
	return validator.New(
		keyFunc,
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// Validator returns the underlying JWT validator
func (m *AuthMiddleware) Validator() *validator.Validator {
	return m.validator
}

// Authenticate returns an Echo middleware that validates JWT tokens
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "Invalid or expired token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return unauthorizedError(c, "Invalid token claims")
			}

			userID, err := strconv.ParseInt(validatedClaims.RegisteredClaims.Subject, 10, 64)
			if err != nil || userID <= 0 {
				log.Debug().Str("subject", validatedClaims.RegisteredClaims.Subject).Msg("Token subject is not a user id")
				return unauthorizedError(c, "Invalid token subject")
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validatedClaims)
			ctx = context.WithValue(ctx, UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user ID from the context, or 0
func GetUserID(c echo.Context) int64 {
	if id, ok := c.Request().Context().Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// WithUserID returns a copy of ctx carrying userID the way Authenticate stores it
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
