package query

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() *TransactionFilterBuilder {
	return NewTransactionFilterBuilder(zerolog.Nop())
}

func findTerm[T Predicate](q Query, field Field) (T, bool) {
	var zero T
	for _, term := range q.Terms() {
		if t, ok := term.(T); ok && termField(t) == field {
			return t, true
		}
	}
	return zero, false
}

func TestBuild_AlwaysIncludesUserClause(t *testing.T) {
	q := newTestBuilder().Build(42, TransactionCriteria{})

	terms := q.Terms()
	require.Len(t, terms, 1)
	assert.Equal(t, Equals{Field: FieldUserID, Value: int64(42)}, terms[0])
}

func TestBuild_UserClauseFirstWithAllFilters(t *testing.T) {
	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(500)
	q := newTestBuilder().Build(7, TransactionCriteria{
		Keyword:   "coffee",
		Type:      "expense",
		Category:  "Food",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		MinAmount: &min,
		MaxAmount: &max,
	})

	terms := q.Terms()
	require.Len(t, terms, 6)
	assert.Equal(t, Equals{Field: FieldUserID, Value: int64(7)}, terms[0])
	assert.Contains(t, terms, ILike{Field: FieldDescription, Substring: "coffee"})
	assert.Contains(t, terms, Equals{Field: FieldType, Value: "expense", Fold: true})
	assert.Contains(t, terms, Equals{Field: FieldCategory, Value: "Food", Fold: true})
	assert.Contains(t, terms, Range{Field: FieldAmount, Min: min, Max: max})
}

func TestBuild_DateRangeSuppressesMonth(t *testing.T) {
	q := newTestBuilder().Build(1, TransactionCriteria{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Month:     "February",
	})

	assert.False(t, q.HasTerm(FieldMonth), "month must be ignored when a date range is present")

	r, ok := findTerm[Range](q, FieldTransactionDate)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.Min)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), r.Max)
}

func TestBuild_SingleDateBoundSuppressesMonth(t *testing.T) {
	q := newTestBuilder().Build(1, TransactionCriteria{EndDate: "2024-03-15", Month: "March"})

	assert.False(t, q.HasTerm(FieldMonth))
	r, ok := findTerm[Range](q, FieldTransactionDate)
	require.True(t, ok)
	assert.Nil(t, r.Min)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), r.Max)
}

func TestBuild_MonthAppliedWithoutDates(t *testing.T) {
	q := newTestBuilder().Build(1, TransactionCriteria{Month: "february"})

	eq, ok := findTerm[Equals](q, FieldMonth)
	require.True(t, ok)
	assert.Equal(t, "february", eq.Value)
	assert.True(t, eq.Fold)
}

func TestBuild_UnparsableDateDropped(t *testing.T) {
	q := newTestBuilder().Build(1, TransactionCriteria{
		StartDate: "not-a-date",
		Category:  "Rent",
	})

	assert.False(t, q.HasTerm(FieldTransactionDate))
	assert.True(t, q.HasTerm(FieldCategory), "valid filters in the same call still apply")
}

func TestBuild_UnparsableDatesDoNotSuppressMonth(t *testing.T) {
	q := newTestBuilder().Build(1, TransactionCriteria{
		StartDate: "2024/01/01",
		EndDate:   "yesterday",
		Month:     "January",
	})

	assert.False(t, q.HasTerm(FieldTransactionDate))
	assert.True(t, q.HasTerm(FieldMonth))
}

func TestBuild_BlankValuesIgnored(t *testing.T) {
	q := newTestBuilder().Build(1, TransactionCriteria{
		Keyword:  "   ",
		Type:     "",
		Category: " ",
		Month:    "",
	})

	assert.Len(t, q.Terms(), 1)
}

func TestBuild_OnlyMinAmount(t *testing.T) {
	min := decimal.RequireFromString("99.99")
	q := newTestBuilder().Build(1, TransactionCriteria{MinAmount: &min})

	r, ok := findTerm[Range](q, FieldAmount)
	require.True(t, ok)
	assert.Equal(t, min, r.Min)
	assert.Nil(t, r.Max)
}

func TestResolveSort(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		order     string
		wantField Field
		wantDir   Direction
	}{
		{"allowed field ascending", "amount", "asc", FieldAmount, Asc},
		{"ascending is case-insensitive", "description", "ASC", FieldDescription, Asc},
		{"disallowed field falls back", "dropTable", "asc", FieldTransactionDate, Asc},
		{"garbage order is descending", "amount", "xyz", FieldAmount, Desc},
		{"empty values use defaults", "", "", FieldTransactionDate, Desc},
		{"desc stays descending", "month", "desc", FieldMonth, Desc},
		{"user id is not sortable", "userId", "asc", FieldTransactionDate, Asc},
		{"field names are case-sensitive", "Amount", "asc", FieldTransactionDate, Asc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ResolveSort(tt.field, tt.order)
			assert.Equal(t, tt.wantField, s.Field)
			assert.Equal(t, tt.wantDir, s.Direction)
		})
	}
}

func TestBuild_SortDefaults(t *testing.T) {
	q := newTestBuilder().Build(1, TransactionCriteria{SortField: "dropTable", SortOrder: "xyz"})
	assert.Equal(t, Sort{Field: FieldTransactionDate, Direction: Desc}, q.Sort)
}
