package domain

import (
	"strings"
	"time"

	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "Income"
	TransactionTypeExpense TransactionType = "Expense"
)

// ParseTransactionType accepts any casing of "income" or "expense" and returns the canonical value
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TransactionTypeIncome, nil
	case "expense":
		return TransactionTypeExpense, nil
	}
	return "", ErrInvalidTransactionType
}

// Transaction is a single income or expense entry. Month is derived from
// TransactionDate on creation and never edited on its own.
type Transaction struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"userId"`
	Description     string           `json:"description"`
	Amount          decimal.Decimal  `json:"amount" swaggertype:"string"`
	Type            TransactionType  `json:"type"`
	Category        string           `json:"category"`
	TransactionDate time.Time        `json:"transactionDate"`
	Month           string           `json:"month"`
	CreatedAt       time.Time        `json:"createdAt"`
	Receipt         *TransactionFile `json:"receipt,omitempty"`
}

// MonthOf returns the English month name used for the derived month field
func MonthOf(date time.Time) string {
	return date.Month().String()
}

// FieldValue implements query.Record
func (t *Transaction) FieldValue(f query.Field) any {
	switch f {
	case query.FieldID:
		return t.ID
	case query.FieldUserID:
		return t.UserID
	case query.FieldDescription:
		return t.Description
	case query.FieldAmount:
		return t.Amount
	case query.FieldTransactionDate:
		return t.TransactionDate
	case query.FieldType:
		return string(t.Type)
	case query.FieldCategory:
		return t.Category
	case query.FieldMonth:
		return t.Month
	}
	return nil
}

// CategoryTotal is the summed amount for one category
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total" swaggertype:"string"`
}

// MonthTotal is the summed amount for one month name
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total" swaggertype:"string"`
}

// TransactionRepository defines persistence for transactions.
// Aggregates return zero, never an error, when no rows match.
type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(userID int64, id int64) (*Transaction, error)
	Search(q query.Query) ([]*Transaction, error)
	// SumByType totals a user's transactions of txType. An empty month means all time.
	SumByType(userID int64, txType TransactionType, month string) (decimal.Decimal, error)
	// Categories lists distinct categories. An empty month means all time.
	Categories(userID int64, month string) ([]string, error)
	Months(userID int64) ([]string, error)
	ExpenseTotalsByCategory(userID int64) ([]CategoryTotal, error)
	ExpenseTotalsByMonth(userID int64) ([]MonthTotal, error)
}
