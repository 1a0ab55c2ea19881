package query

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePostgres_FullCriteria(t *testing.T) {
	min := decimal.NewFromInt(5)
	q := NewTransactionFilterBuilder(zerolog.Nop()).Build(9, TransactionCriteria{
		Keyword:   "tea",
		Type:      "Expense",
		StartDate: "2024-05-01",
		MinAmount: &min,
		SortField: "amount",
		SortOrder: "asc",
	})

	sql, err := CompilePostgres(q)
	require.NoError(t, err)

	assert.Equal(t,
		"(user_id = $1 AND description ILIKE $2 AND LOWER(type) = LOWER($3) AND transaction_date >= $4 AND amount >= $5)",
		sql.Where)
	assert.Equal(t, "amount ASC, id DESC", sql.OrderBy)
	assert.Equal(t, []any{int64(9), "%tea%", "Expense", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), min}, sql.Args)
}

func TestCompilePostgres_EscapesLikeMetacharacters(t *testing.T) {
	q := Query{Where: ILike{Field: FieldDescription, Substring: `50%_off\now`}}

	sql, err := CompilePostgres(q)
	require.NoError(t, err)
	assert.Equal(t, []any{`%50\%\_off\\now%`}, sql.Args)
}

func TestCompilePostgres_SortByIDHasNoTiebreak(t *testing.T) {
	sql, err := CompilePostgres(Query{Sort: Sort{Field: FieldID, Direction: Desc}})
	require.NoError(t, err)
	assert.Equal(t, "TRUE", sql.Where)
	assert.Equal(t, "id DESC", sql.OrderBy)
}

func TestCompilePostgres_DisallowedSortFallsBack(t *testing.T) {
	sql, err := CompilePostgres(Query{Sort: Sort{Field: "1; DROP TABLE transactions", Direction: Asc}})
	require.NoError(t, err)
	assert.Equal(t, "transaction_date ASC, id DESC", sql.OrderBy)
}

func TestCompilePostgres_UnknownFieldErrors(t *testing.T) {
	_, err := CompilePostgres(Query{Where: Equals{Field: "password", Value: "x"}})
	assert.Error(t, err)
}

func TestCompilePostgres_Limit(t *testing.T) {
	q := Query{Where: Equals{Field: FieldUserID, Value: int64(3)}, Sort: Sort{Field: FieldTransactionDate, Direction: Desc}, Limit: 5}

	sql, err := CompilePostgres(q)
	require.NoError(t, err)
	assert.Equal(t, "user_id = $1", sql.Where)
	assert.Equal(t, "LIMIT $2", sql.Limit)
	assert.Equal(t, []any{int64(3), 5}, sql.Args)
}
