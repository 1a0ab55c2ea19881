package query

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record exposes field values to the in-memory interpreter
type Record interface {
	FieldValue(f Field) any
}

// Match reports whether r satisfies p. A nil predicate matches everything.
func Match(p Predicate, r Record) bool {
	switch t := p.(type) {
	case nil:
		return true
	case And:
		for _, term := range t.Terms {
			if !Match(term, r) {
				return false
			}
		}
		return true
	case Equals:
		v := r.FieldValue(t.Field)
		if t.Fold {
			a, aok := v.(string)
			b, bok := t.Value.(string)
			return aok && bok && strings.EqualFold(a, b)
		}
		c, ok := compare(v, t.Value)
		return ok && c == 0
	case ILike:
		s, ok := r.FieldValue(t.Field).(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(t.Substring))
	case Range:
		v := r.FieldValue(t.Field)
		if t.Min != nil {
			if c, ok := compare(v, t.Min); !ok || c < 0 {
				return false
			}
		}
		if t.Max != nil {
			if c, ok := compare(v, t.Max); !ok || c > 0 {
				return false
			}
		}
		return true
	}
	return false
}

// Execute filters records by q.Where and orders them by q.Sort, breaking
// ties by id descending so the order is deterministic.
func Execute[T Record](q Query, records []T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if Match(q.Where, r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c, _ := compare(out[i].FieldValue(q.Sort.Field), out[j].FieldValue(q.Sort.Field))
		if c == 0 {
			idc, _ := compare(out[i].FieldValue(FieldID), out[j].FieldValue(FieldID))
			return idc > 0
		}
		if q.Sort.Direction == Asc {
			return c < 0
		}
		return c > 0
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// compare orders two values of the same kind. ok is false for mismatched or unsupported types.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case int64:
		y, ok := b.(int64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		if !ok {
			return 0, false
		}
		return x.Cmp(y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}
	return 0, false
}
