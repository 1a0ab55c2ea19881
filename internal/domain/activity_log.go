package domain

import "time"

type ActivityType string

const (
	ActivityLoginSuccess         ActivityType = "LOGIN_SUCCESS"
	ActivityLoginFailure         ActivityType = "LOGIN_FAILURE"
	ActivityPasswordChange       ActivityType = "PASSWORD_CHANGE"
	ActivityPasswordResetRequest ActivityType = "PASSWORD_RESET_REQUEST"
	ActivityPasswordResetSuccess ActivityType = "PASSWORD_RESET_SUCCESS"
	ActivityEmailVerified        ActivityType = "EMAIL_VERIFIED"
	ActivityUserRegistered       ActivityType = "USER_REGISTERED"
	ActivityBudgetUpdated        ActivityType = "BUDGET_UPDATED"
	ActivityTransactionAdded     ActivityType = "TRANSACTION_ADDED"
	ActivityTransactionUpdated   ActivityType = "TRANSACTION_UPDATED"
	ActivityTransactionDeleted   ActivityType = "TRANSACTION_DELETED"
)

// ActivityLog is an audit entry of something a user did
type ActivityLog struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"userId"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	IPAddress   string       `json:"ipAddress,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedActivityLogs struct {
	Data       []*ActivityLog `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

type ActivityLogRepository interface {
	Create(entry *ActivityLog) (*ActivityLog, error)
	// ListByUser returns one page, newest first, and the total count
	ListByUser(userID int64, page, pageSize int32) ([]*ActivityLog, int64, error)
}
