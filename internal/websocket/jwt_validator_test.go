package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret-that-is-long-enough-for-hs256"
	testIssuer   = "finance-backend"
	testAudience = "finance-web"
)

func newTestValidator(t *testing.T) *TokenValidator {
	t.Helper()
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return []byte(testSecret), nil
	}
	v, err := validator.New(keyFunc, validator.HS256, testIssuer, []string{testAudience},
		validator.WithAllowedClockSkew(time.Minute))
	require.NoError(t, err)
	return NewTokenValidator(v)
}

func signToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestTokenValidator_ValidToken(t *testing.T) {
	v := newTestValidator(t)

	userID, err := v.ValidateToken(signToken(t, "42", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenValidator_Rejects(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"expired", signToken(t, "42", time.Now().Add(-time.Hour))},
		{"non-numeric subject", signToken(t, "auth0|abc", time.Now().Add(time.Hour))},
		{"zero subject", signToken(t, "0", time.Now().Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

type stubClaimsValidator struct {
	claims interface{}
	err    error
}

func (s stubClaimsValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	return s.claims, s.err
}

func TestTokenValidator_UnderlyingError(t *testing.T) {
	v := NewTokenValidator(stubClaimsValidator{err: errors.New("boom")})
	_, err := v.ValidateToken("x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenValidator_UnexpectedClaimsType(t *testing.T) {
	v := NewTokenValidator(stubClaimsValidator{claims: map[string]string{"sub": "1"}})
	_, err := v.ValidateToken("x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
