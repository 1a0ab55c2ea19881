package domain

import (
	"time"
)

// User represents a registered account holder
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	Create(user *User) (*User, error)
	UpdatePassword(id int64, passwordHash string) error
	MarkVerified(id int64) error
}
