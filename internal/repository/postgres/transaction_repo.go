package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/appdev/finance/finance-backend/internal/domain"
	"github.com/appdev/finance/finance-backend/internal/query"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, user_id, description, amount, type, category, transaction_date, month, created_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a new transaction
func (r *TransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(tx.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO transactions (user_id, description, amount, type, category, transaction_date, month)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+transactionColumns,
		tx.UserID, tx.Description, amount, string(tx.Type), tx.Category,
		pgtype.Date{Time: tx.TransactionDate, Valid: true}, tx.Month)
	return scanTransaction(row)
}

// GetByID retrieves a transaction owned by userID
func (r *TransactionRepository) GetByID(userID int64, id int64) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	return scanTransaction(row)
}

// Search runs a compiled filter query
func (r *TransactionRepository) Search(q query.Query) ([]*domain.Transaction, error) {
	compiled, err := query.CompilePostgres(q)
	if err != nil {
		return nil, fmt.Errorf("compile transaction query: %w", err)
	}
	sql := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + compiled.Where + ` ORDER BY ` + compiled.OrderBy
	if compiled.Limit != "" {
		sql += ` ` + compiled.Limit
	}

	rows, err := r.pool.Query(context.Background(), sql, compiled.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// SumByType totals a user's transactions of one type. An empty month means all time.
func (r *TransactionRepository) SumByType(userID int64, txType domain.TransactionType, month string) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.pool.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND type = $2 AND ($3::text = '' OR LOWER(month) = LOWER($3::text))`,
		userID, string(txType), month).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// Categories lists a user's distinct categories. An empty month means all time.
func (r *TransactionRepository) Categories(userID int64, month string) ([]string, error) {
	return r.strings(`
		SELECT DISTINCT category FROM transactions
		WHERE user_id = $1 AND ($2::text = '' OR LOWER(month) = LOWER($2::text))
		ORDER BY category`, userID, month)
}

// Months lists the distinct month names a user has transactions in
func (r *TransactionRepository) Months(userID int64) ([]string, error) {
	return r.strings(`SELECT DISTINCT month FROM transactions WHERE user_id = $1`, userID)
}

// ExpenseTotalsByCategory sums a user's expenses per category, largest first
func (r *TransactionRepository) ExpenseTotalsByCategory(userID int64) ([]domain.CategoryTotal, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT category, SUM(amount) FROM transactions
		WHERE user_id = $1 AND type = $2
		GROUP BY category
		ORDER BY SUM(amount) DESC, category`,
		userID, string(domain.TransactionTypeExpense))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CategoryTotal{}
	for rows.Next() {
		var ct domain.CategoryTotal
		var total pgtype.Numeric
		if err := rows.Scan(&ct.Category, &total); err != nil {
			return nil, err
		}
		ct.Total = pgNumericToDecimal(total)
		result = append(result, ct)
	}
	return result, rows.Err()
}

// ExpenseTotalsByMonth sums a user's expenses per month name
func (r *TransactionRepository) ExpenseTotalsByMonth(userID int64) ([]domain.MonthTotal, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT month, SUM(amount) FROM transactions
		WHERE user_id = $1 AND type = $2
		GROUP BY month`,
		userID, string(domain.TransactionTypeExpense))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.MonthTotal{}
	for rows.Next() {
		var mt domain.MonthTotal
		var total pgtype.Numeric
		if err := rows.Scan(&mt.Month, &total); err != nil {
			return nil, err
		}
		mt.Total = pgNumericToDecimal(total)
		result = append(result, mt)
	}
	return result, rows.Err()
}

func (r *TransactionRepository) strings(sql string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(context.Background(), sql, args...)
	if err != nil {
		return nil, err
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func scanTransaction(row scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount pgtype.Numeric
	var txType string
	var date pgtype.Date
	err := row.Scan(&t.ID, &t.UserID, &t.Description, &amount, &txType, &t.Category, &date, &t.Month, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	t.Amount = pgNumericToDecimal(amount)
	t.Type = domain.TransactionType(txType)
	t.TransactionDate = date.Time
	return &t, nil
}
