package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a user's spending limit. There is at most one per user.
type Budget struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ExpenseScope selects which expenses a budget is measured against
type ExpenseScope string

const (
	// ExpenseScopeMonthly covers expenses whose month is the current month name
	ExpenseScopeMonthly ExpenseScope = "monthly"
	// ExpenseScopeOverall covers all of a user's expenses
	ExpenseScopeOverall ExpenseScope = "overall"
)

// ThresholdLabel names a budget warning severity
type ThresholdLabel string

const (
	ThresholdExceeded ThresholdLabel = "EXCEEDED"
	ThresholdNear95   ThresholdLabel = "NEAR_95"
	ThresholdNear80   ThresholdLabel = "NEAR_80"
)

// BudgetRepository defines persistence for budgets
type BudgetRepository interface {
	// GetByUserID returns ErrBudgetNotFound when the user never saved one
	GetByUserID(userID int64) (*Budget, error)
	Upsert(userID int64, amount decimal.Decimal) (*Budget, error)
}
