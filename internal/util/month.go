package util

import (
	"sort"
	"strings"
	"time"
)

// ParseMonthName returns the month for an English month name, ignoring case
func ParseMonthName(name string) (time.Month, bool) {
	name = strings.TrimSpace(name)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}

// CanonicalMonthName returns the capitalized month name, or "" when name is not a month
func CanonicalMonthName(name string) string {
	if m, ok := ParseMonthName(name); ok {
		return m.String()
	}
	return ""
}

// CurrentMonthName returns the English month name of now
func CurrentMonthName(now time.Time) string {
	return now.Month().String()
}

// MonthNameLess orders month names by calendar position. Unknown names go last, alphabetically.
func MonthNameLess(a, b string) bool {
	ma, oka := ParseMonthName(a)
	mb, okb := ParseMonthName(b)
	switch {
	case oka && okb:
		return ma < mb
	case oka != okb:
		return oka
	}
	return a < b
}

// SortMonthNames sorts names with MonthNameLess
func SortMonthNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return MonthNameLess(names[i], names[j])
	})
}
