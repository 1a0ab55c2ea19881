package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// GetByUserID retrieves the user's budget
func (r *BudgetRepository) GetByUserID(userID int64) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT id, user_id, amount, updated_at FROM budgets WHERE user_id = $1`, userID)
	return scanBudget(row)
}

// Upsert creates the user's budget or replaces its amount
func (r *BudgetRepository) Upsert(userID int64, amount decimal.Decimal) (*domain.Budget, error) {
	pgAmount, err := decimalToPgNumeric(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid budget amount: %w", err)
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO budgets (user_id, amount)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET amount = EXCLUDED.amount, updated_at = NOW()
		RETURNING id, user_id, amount, updated_at`,
		userID, pgAmount)
	return scanBudget(row)
}

func scanBudget(row scanner) (*domain.Budget, error) {
	var b domain.Budget
	var amount pgtype.Numeric
	if err := row.Scan(&b.ID, &b.UserID, &amount, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	b.Amount = pgNumericToDecimal(amount)
	return &b, nil
}
