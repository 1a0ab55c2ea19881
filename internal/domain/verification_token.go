package domain

import "time"

type TokenType string

const (
	TokenTypeEmailVerification TokenType = "EMAIL_VERIFICATION"
	TokenTypePasswordReset     TokenType = "PASSWORD_RESET"
)

// VerificationTokenTTL is how long a mailed token stays valid
const VerificationTokenTTL = 24 * time.Hour

// VerificationToken is a single-use token mailed to a user
type VerificationToken struct {
	ID        int64
	UserID    int64
	Token     string
	Type      TokenType
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsExpired reports whether the token is past its expiry at now
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type VerificationTokenRepository interface {
	Create(token *VerificationToken) (*VerificationToken, error)
	GetByToken(token string, tokenType TokenType) (*VerificationToken, error)
	MarkUsed(id int64) error
	// InvalidateForUser marks every unused token of tokenType for the user as used
	InvalidateForUser(userID int64, tokenType TokenType) error
	PurgeExpiredAndUsed(now time.Time) (int64, error)
}
