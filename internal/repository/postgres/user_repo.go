package postgres

import (
	"context"
	"errors"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, name, password_hash, verified, enabled, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id int64) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(email string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	return scanUser(row)
}

// Create creates a new user
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO users (email, name, password_hash, verified, enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		user.Email, user.Name, user.PasswordHash, user.Verified, user.Enabled)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(id int64, passwordHash string) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// MarkVerified flags a user's email as verified
func (r *UserRepository) MarkVerified(id int64) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE users SET verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Verified, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
