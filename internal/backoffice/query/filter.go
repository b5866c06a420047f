// Package query turns optional list-page filters into a parameterized SQL
// predicate and paginates the filtered rows.
//
// Build is pure: the same filters always yield the same clause text and the
// same bound arguments, so one Predicate can drive both the COUNT query and
// the page query of a list view.
package query

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MatchKind selects how a filter value is compared.
type MatchKind int

const (
	// Contains matches a substring in any of the filter's columns.
	Contains MatchKind = iota
	// Equals matches the column exactly.
	Equals
	// GTE is an inclusive lower bound. Bare dates start at 00:00:00.
	GTE
	// LTE is an inclusive upper bound. Bare dates cover the whole day.
	LTE
	// Flag adds a fixed expression when the value is set (checkbox filters).
	Flag
)

// DateLayout is the format of bare date filter values.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Filter is one optional search criterion.
type Filter struct {
	// Field is the request parameter the value came from.
	Field string
	// Columns are the target columns. Empty means Field itself.
	Columns []string
	Kind    MatchKind
	Value   string
	// Expr is the predicate added by a Flag filter.
	Expr string
	// Args are bound with Expr, or replace the raw value for Equals.
	Args []interface{}
}

func (f Filter) columns() []string {
	if len(f.Columns) > 0 {
		return f.Columns
	}
	return []string{f.Field}
}

// Search matches value as a substring of any column.
func Search(field, value string, columns ...string) Filter {
	return Filter{Field: field, Columns: columns, Kind: Contains, Value: value}
}

// Eq matches column exactly against value.
func Eq(column, value string) Filter {
	return Filter{Field: column, Kind: Equals, Value: value}
}

// EqUint matches an id column. Values that are not unsigned integers are
// treated as absent.
func EqUint(column, value string) Filter {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return Filter{Field: column, Kind: Equals}
	}
	return Filter{Field: column, Kind: Equals, Value: value, Args: []interface{}{uint(id)}}
}

// From bounds column from below.
func From(field, column, value string) Filter {
	return Filter{Field: field, Columns: []string{column}, Kind: GTE, Value: value}
}

// To bounds column from above.
func To(field, column, value string) Filter {
	return Filter{Field: field, Columns: []string{column}, Kind: LTE, Value: value}
}

// When adds expr if value is set.
func When(field, value, expr string, args ...interface{}) Filter {
	return Filter{Field: field, Kind: Flag, Value: value, Expr: expr, Args: args}
}

// Predicate is a WHERE condition with its bound arguments.
type Predicate struct {
	Clause string
	Args   []interface{}
}

// Empty reports whether the predicate matches every row.
func (p Predicate) Empty() bool {
	return p.Clause == ""
}

// Apply adds the predicate to db, or returns db untouched when empty.
func (p Predicate) Apply(db *gorm.DB) *gorm.DB {
	if p.Empty() {
		return db
	}
	return db.Where(p.Clause, p.Args...)
}

// Build combines the filters with AND, skipping those without a value.
func Build(filters ...Filter) Predicate {
	var (
		clauses []string
		args    []interface{}
	)

	for _, f := range filters {
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		cols := f.columns()

		switch f.Kind {
		case Contains:
			pattern := "%" + value + "%"
			parts := make([]string, 0, len(cols))
			for _, col := range cols {
				parts = append(parts, col+" LIKE ?")
				args = append(args, pattern)
			}
			if len(parts) == 1 {
				clauses = append(clauses, parts[0])
			} else {
				clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
			}
		case Equals:
			clauses = append(clauses, cols[0]+" = ?")
			if len(f.Args) == 1 {
				args = append(args, f.Args[0])
			} else {
				args = append(args, value)
			}
		case GTE:
			clauses = append(clauses, cols[0]+" >= ?")
			args = append(args, lowerBound(value))
		case LTE:
			clauses = append(clauses, cols[0]+" <= ?")
			args = append(args, upperBound(value))
		case Flag:
			clauses = append(clauses, "("+f.Expr+")")
			args = append(args, f.Args...)
		}
	}

	return Predicate{Clause: strings.Join(clauses, " AND "), Args: args}
}

// DayStart returns 00:00:00 UTC of a YYYY-MM-DD date.
func DayStart(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(date), time.UTC)
}

// DayEnd returns the last instant of a YYYY-MM-DD date in UTC, so that
// rows stored with fractional seconds still fall inside the day.
func DayEnd(date string) (time.Time, error) {
	day, err := DayStart(date)
	if err != nil {
		return time.Time{}, err
	}
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

func lowerBound(value string) interface{} {
	if day, err := DayStart(value); err == nil {
		return day
	}
	return timestampOrRaw(value)
}

func upperBound(value string) interface{} {
	if day, err := DayEnd(value); err == nil {
		return day
	}
	return timestampOrRaw(value)
}

func timestampOrRaw(value string) interface{} {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts.UTC()
		}
	}
	return value
}
