// Package query describes transaction lookups as plain values.
//
// A Query is a tree of predicates plus a sort. It carries no knowledge of
// how it will be executed: the postgres repository compiles it to SQL with
// CompilePostgres, and tests evaluate it in memory with Execute.
package query

// Field names a filterable or sortable transaction attribute
type Field string

const (
	FieldID              Field = "id"
	FieldUserID          Field = "userId"
	FieldDescription     Field = "description"
	FieldAmount          Field = "amount"
	FieldTransactionDate Field = "transactionDate"
	FieldType            Field = "type"
	FieldCategory        Field = "category"
	FieldMonth           Field = "month"
)

// DefaultSortField is used when the requested sort field is not allowed
const DefaultSortField = FieldTransactionDate

// sortableFields is the allow-list of fields a caller may sort by
var sortableFields = map[Field]bool{
	FieldID:              true,
	FieldDescription:     true,
	FieldAmount:          true,
	FieldTransactionDate: true,
	FieldType:            true,
	FieldCategory:        true,
	FieldMonth:           true,
}

// IsSortable reports whether f is in the sort allow-list
func IsSortable(f Field) bool {
	return sortableFields[f]
}

// Predicate is one of Equals, ILike, Range or And
type Predicate interface {
	predicate()
}

// Equals matches records whose field equals Value.
// With Fold set, string values are compared case-insensitively.
type Equals struct {
	Field Field
	Value any
	Fold  bool
}

// ILike matches records whose field contains Substring, ignoring case
type ILike struct {
	Field     Field
	Substring string
}

// Range matches records whose field lies within [Min, Max].
// A nil bound leaves that side open.
type Range struct {
	Field Field
	Min   any
	Max   any
}

// And matches records satisfying every term
type And struct {
	Terms []Predicate
}

func (Equals) predicate() {}
func (ILike) predicate()  {}
func (Range) predicate()  {}
func (And) predicate()    {}

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort orders results by a single field
type Sort struct {
	Field     Field
	Direction Direction
}

// Query is a complete lookup: a predicate, a sort and an optional row limit
type Query struct {
	Where Predicate
	Sort  Sort
	Limit int // 0 means unlimited
}

// Terms flattens the top-level And of q.Where
func (q Query) Terms() []Predicate {
	switch p := q.Where.(type) {
	case nil:
		return nil
	case And:
		return p.Terms
	default:
		return []Predicate{p}
	}
}

// HasTerm reports whether any top-level term filters on field
func (q Query) HasTerm(field Field) bool {
	for _, t := range q.Terms() {
		if termField(t) == field {
			return true
		}
	}
	return false
}

func termField(p Predicate) Field {
	switch t := p.(type) {
	case Equals:
		return t.Field
	case ILike:
		return t.Field
	case Range:
		return t.Field
	}
	return ""
}
