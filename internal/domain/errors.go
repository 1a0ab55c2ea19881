package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternalError = errors.New("internal error")

	// Users and credentials
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email address not verified")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")

	// Transactions
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrDescriptionTooLong     = errors.New("description exceeds maximum length")
	ErrCategoryRequired       = errors.New("category is required")
	ErrCategoryTooLong        = errors.New("category exceeds maximum length")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrInvalidTransactionType = errors.New("type must be Income or Expense")
	ErrDateRequired           = errors.New("transaction date is required")
	ErrReceiptNotFound        = errors.New("receipt not found")

	// Budget
	ErrBudgetNotFound = errors.New("budget not found")
	ErrNegativeBudget = errors.New("budget amount cannot be negative")

	// Notifications
	ErrNotificationNotFound = errors.New("notification not found")
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxCategoryLength    = 100
	MinPasswordLength    = 8
)
