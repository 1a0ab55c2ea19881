package handler

import (
	"errors"
	"net/http"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://finance.app/errors/validation"
	ErrorTypeNotFound     = "https://finance.app/errors/not-found"
	ErrorTypeUnauthorized = "https://finance.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://finance.app/errors/forbidden"
	ErrorTypeConflict     = "https://finance.app/errors/conflict"
	ErrorTypeInternal     = "https://finance.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps validation sentinels onto the request field they concern
var fieldErrors = []struct {
	err     error
	field   string
	message string
}{
	{domain.ErrDescriptionRequired, "description", "Description is required"},
	{domain.ErrDescriptionTooLong, "description", "Description must be 255 characters or less"},
	{domain.ErrCategoryRequired, "category", "Category is required"},
	{domain.ErrCategoryTooLong, "category", "Category must be 100 characters or less"},
	{domain.ErrInvalidAmount, "amount", "Amount must be greater than zero"},
	{domain.ErrInvalidTransactionType, "type", "Type must be one of: Income, Expense"},
	{domain.ErrDateRequired, "transactionDate", "Transaction date is required"},
	{domain.ErrNegativeBudget, "amount", "Budget cannot be negative"},
	{domain.ErrInvalidEmail, "email", "Must be a valid email address"},
	{domain.ErrPasswordTooShort, "password", "Password must be at least 8 characters"},
	{service.ErrReceiptTooLarge, "receipt", "Receipt must be 10MB or smaller"},
	{service.ErrReceiptEmpty, "receipt", "Receipt file is empty"},
	{service.ErrUnsupportedReceiptType, "receipt", "Receipt must be a JPEG, PNG, WebP or PDF file"},
}

// respondError writes the problem response for a service error
func respondError(c echo.Context, err error) error {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: fe.field, Message: fe.message},
			})
		}
	}

	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
	case errors.Is(err, domain.ErrReceiptNotFound):
		return NewNotFoundError(c, "Receipt not found")
	case errors.Is(err, domain.ErrNotificationNotFound):
		return NewNotFoundError(c, "Notification not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	case errors.Is(err, domain.ErrForbidden):
		return NewForbiddenError(c, "You do not have access to this resource")
	case errors.Is(err, domain.ErrEmailTaken):
		return NewConflictError(c, "Email is already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return NewUnauthorizedError(c, "Invalid email or password")
	case errors.Is(err, domain.ErrEmailNotVerified):
		return NewForbiddenError(c, "Email address has not been verified")
	case errors.Is(err, domain.ErrAccountDisabled):
		return NewForbiddenError(c, "Account is disabled")
	case errors.Is(err, domain.ErrTokenExpired):
		return NewValidationError(c, "Token has expired", []ValidationError{{Field: "token", Message: "Token has expired"}})
	case errors.Is(err, domain.ErrTokenInvalid):
		return NewValidationError(c, "Token is invalid", []ValidationError{{Field: "token", Message: "Token is invalid or already used"}})
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Request failed")
	return NewInternalError(c, "An unexpected error occurred")
}
