package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tokenColumns = `id, user_id, token, type, expires_at, used, created_at`

// VerificationTokenRepository implements domain.VerificationTokenRepository using PostgreSQL
type VerificationTokenRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository
func NewVerificationTokenRepository(pool *pgxpool.Pool) *VerificationTokenRepository {
	return &VerificationTokenRepository{pool: pool}
}

// Create stores a new token
func (r *VerificationTokenRepository) Create(token *domain.VerificationToken) (*domain.VerificationToken, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO verification_tokens (user_id, token, type, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+tokenColumns,
		token.UserID, token.Token, string(token.Type), token.ExpiresAt)
	return scanToken(row)
}

// GetByToken looks a token up by value and type
func (r *VerificationTokenRepository) GetByToken(token string, tokenType domain.TokenType) (*domain.VerificationToken, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+tokenColumns+` FROM verification_tokens WHERE token = $1 AND type = $2`, token, string(tokenType))
	return scanToken(row)
}

// MarkUsed consumes a token. Only one caller can flip used, so concurrent
// redemptions of the same token see ErrTokenInvalid after the first.
func (r *VerificationTokenRepository) MarkUsed(id int64) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE verification_tokens SET used = TRUE WHERE id = $1 AND NOT used`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTokenInvalid
	}
	return nil
}

// InvalidateForUser marks every unused token of tokenType for the user as used
func (r *VerificationTokenRepository) InvalidateForUser(userID int64, tokenType domain.TokenType) error {
	_, err := r.pool.Exec(context.Background(),
		`UPDATE verification_tokens SET used = TRUE WHERE user_id = $1 AND type = $2 AND NOT used`,
		userID, string(tokenType))
	return err
}

// PurgeExpiredAndUsed deletes tokens that can no longer be redeemed
func (r *VerificationTokenRepository) PurgeExpiredAndUsed(now time.Time) (int64, error) {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM verification_tokens WHERE used OR expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanToken(row scanner) (*domain.VerificationToken, error) {
	var t domain.VerificationToken
	var tokenType string
	if err := row.Scan(&t.ID, &t.UserID, &t.Token, &tokenType, &t.ExpiresAt, &t.Used, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	t.Type = domain.TokenType(tokenType)
	return &t, nil
}
