package query

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DateLayout is the accepted format for date filters
const DateLayout = "2006-01-02"

// TransactionCriteria holds the optional search parameters for a user's transactions.
// Blank strings and nil amounts mean "not supplied".
type TransactionCriteria struct {
	Keyword   string
	Type      string
	Category  string
	Month     string
	StartDate string
	EndDate   string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	SortField string
	SortOrder string
}

// TransactionFilterBuilder turns TransactionCriteria into a Query
type TransactionFilterBuilder struct {
	logger zerolog.Logger
}

// NewTransactionFilterBuilder creates a new TransactionFilterBuilder
func NewTransactionFilterBuilder(logger zerolog.Logger) *TransactionFilterBuilder {
	return &TransactionFilterBuilder{
		logger: logger.With().Str("component", "transaction_filter").Logger(),
	}
}

// Build returns the query for userID's transactions matching criteria.
// The user clause is always the first term. Bad dates are logged and dropped.
func (b *TransactionFilterBuilder) Build(userID int64, criteria TransactionCriteria) Query {
	terms := []Predicate{Equals{Field: FieldUserID, Value: userID}}

	if kw := strings.TrimSpace(criteria.Keyword); kw != "" {
		terms = append(terms, ILike{Field: FieldDescription, Substring: kw})
	}
	if t := strings.TrimSpace(criteria.Type); t != "" {
		terms = append(terms, Equals{Field: FieldType, Value: t, Fold: true})
	}
	if c := strings.TrimSpace(criteria.Category); c != "" {
		terms = append(terms, Equals{Field: FieldCategory, Value: c, Fold: true})
	}

	start, hasStart := b.parseDate(userID, "startDate", criteria.StartDate)
	end, hasEnd := b.parseDate(userID, "endDate", criteria.EndDate)
	if hasStart || hasEnd {
		r := Range{Field: FieldTransactionDate}
		if hasStart {
			r.Min = start
		}
		if hasEnd {
			r.Max = end
		}
		terms = append(terms, r)
	} else if m := strings.TrimSpace(criteria.Month); m != "" {
		terms = append(terms, Equals{Field: FieldMonth, Value: m, Fold: true})
	}

	if criteria.MinAmount != nil || criteria.MaxAmount != nil {
		r := Range{Field: FieldAmount}
		if criteria.MinAmount != nil {
			r.Min = *criteria.MinAmount
		}
		if criteria.MaxAmount != nil {
			r.Max = *criteria.MaxAmount
		}
		terms = append(terms, r)
	}

	return Query{
		Where: And{Terms: terms},
		Sort:  ResolveSort(criteria.SortField, criteria.SortOrder),
	}
}

// ResolveSort applies the sort allow-list. Unknown fields fall back to
// transactionDate; any order other than "asc" is descending.
func ResolveSort(field, order string) Sort {
	f := Field(field)
	if !IsSortable(f) {
		f = DefaultSortField
	}
	dir := Desc
	if strings.EqualFold(order, string(Asc)) {
		dir = Asc
	}
	return Sort{Field: f, Direction: dir}
}

func (b *TransactionFilterBuilder) parseDate(userID int64, param, value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		b.logger.Warn().
			Int64("user_id", userID).
			Str("param", param).
			Str("value", value).
			Msg("Ignoring unparsable date filter, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
