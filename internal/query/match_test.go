package query

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type row struct {
	id       int64
	userID   int64
	desc     string
	amount   decimal.Decimal
	date     time.Time
	txType   string
	category string
	month    string
}

func (r row) FieldValue(f Field) any {
	switch f {
	case FieldID:
		return r.id
	case FieldUserID:
		return r.userID
	case FieldDescription:
		return r.desc
	case FieldAmount:
		return r.amount
	case FieldTransactionDate:
		return r.date
	case FieldType:
		return r.txType
	case FieldCategory:
		return r.category
	case FieldMonth:
		return r.month
	}
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixtureRows() []row {
	return []row{
		{1, 1, "Morning Coffee", decimal.RequireFromString("4.50"), day(2024, 1, 5), "Expense", "Food", "January"},
		{2, 1, "Salary", decimal.RequireFromString("3000.00"), day(2024, 1, 31), "Income", "Work", "January"},
		{3, 1, "Rent", decimal.RequireFromString("1200.00"), day(2024, 2, 1), "Expense", "Housing", "February"},
		{4, 2, "Coffee beans", decimal.RequireFromString("18.00"), day(2024, 1, 10), "Expense", "Food", "January"},
		{5, 1, "100%_natural juice", decimal.RequireFromString("3.00"), day(2024, 2, 3), "Expense", "food", "February"},
	}
}

func ids(rows []row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

func TestExecute_NeverReturnsOtherUsersRows(t *testing.T) {
	b := NewTransactionFilterBuilder(zerolog.Nop())
	q := b.Build(1, TransactionCriteria{Keyword: "coffee"})

	got := Execute(q, fixtureRows())
	assert.Equal(t, []int64{1}, ids(got))
}

func TestExecute_CaseInsensitiveEquality(t *testing.T) {
	b := NewTransactionFilterBuilder(zerolog.Nop())
	q := b.Build(1, TransactionCriteria{Category: "FOOD", Type: "expense", SortOrder: "asc", SortField: "id"})

	got := Execute(q, fixtureRows())
	assert.Equal(t, []int64{1, 5}, ids(got))
}

func TestExecute_InclusiveDateAndAmountBounds(t *testing.T) {
	b := NewTransactionFilterBuilder(zerolog.Nop())
	min := decimal.RequireFromString("4.50")
	max := decimal.RequireFromString("1200.00")
	q := b.Build(1, TransactionCriteria{
		StartDate: "2024-01-05",
		EndDate:   "2024-02-01",
		MinAmount: &min,
		MaxAmount: &max,
	})

	got := Execute(q, fixtureRows())
	assert.Equal(t, []int64{3, 1}, ids(got), "both bounds inclusive, newest first")
}

func TestExecute_KeywordIsLiteral(t *testing.T) {
	b := NewTransactionFilterBuilder(zerolog.Nop())
	q := b.Build(1, TransactionCriteria{Keyword: "%_NATURAL"})

	got := Execute(q, fixtureRows())
	assert.Equal(t, []int64{5}, ids(got))
}

func TestExecute_SortByAmountAscending(t *testing.T) {
	b := NewTransactionFilterBuilder(zerolog.Nop())
	q := b.Build(1, TransactionCriteria{SortField: "amount", SortOrder: "Asc"})

	got := Execute(q, fixtureRows())
	assert.Equal(t, []int64{5, 1, 3, 2}, ids(got))
}

func TestExecute_TiesBrokenByIDDescending(t *testing.T) {
	rows := []row{
		{1, 1, "a", decimal.NewFromInt(1), day(2024, 1, 1), "Expense", "x", "January"},
		{2, 1, "b", decimal.NewFromInt(1), day(2024, 1, 1), "Expense", "x", "January"},
	}
	q := Query{Where: Equals{Field: FieldUserID, Value: int64(1)}, Sort: Sort{Field: FieldTransactionDate, Direction: Asc}}

	assert.Equal(t, []int64{2, 1}, ids(Execute(q, rows)))
}

func TestMatch_TypeMismatchDoesNotMatch(t *testing.T) {
	r := fixtureRows()[0]
	assert.False(t, Match(Equals{Field: FieldUserID, Value: 1}, r), "int is not int64")
	assert.False(t, Match(Range{Field: FieldAmount, Min: 1.0}, r))
	assert.True(t, Match(nil, r))
	assert.True(t, Match(And{}, r))
}

func TestExecute_Limit(t *testing.T) {
	q := Query{Where: Equals{Field: FieldUserID, Value: int64(1)}, Sort: Sort{Field: FieldTransactionDate, Direction: Desc}, Limit: 2}

	assert.Equal(t, []int64{5, 3}, ids(Execute(q, fixtureRows())))
}
