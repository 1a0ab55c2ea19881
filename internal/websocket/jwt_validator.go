package websocket

import (
	"context"
	"errors"
	"strconv"

	"github.com/auth0/go-jwt-middleware/v2/validator"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// ClaimsValidator validates a raw JWT and returns its claims
type ClaimsValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// TokenValidator authenticates WebSocket connections. Browsers cannot set
// headers on the upgrade request, so the token arrives as a query parameter.
type TokenValidator struct {
	validator ClaimsValidator
}

// NewTokenValidator creates a TokenValidator on the same validator used for HTTP requests
func NewTokenValidator(v ClaimsValidator) *TokenValidator {
	return &TokenValidator{validator: v}
}

// ValidateToken validates a JWT and returns the user ID in its subject
func (v *TokenValidator) ValidateToken(token string) (int64, error) {
	claims, err := v.validator.ValidateToken(context.Background(), token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(validated.RegisteredClaims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
