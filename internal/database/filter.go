package database

import (
	"strings"
)

// Pair is a single column/value term
type Pair struct {
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// Filter is an ordered list of column/value terms. It is used both for
// WHERE conjunctions and for SET assignments; term order is clause order.
type Filter []Pair

// Where starts a filter with a single term
func Where(column string, value any) Filter {
	return Filter{{Column: column, Value: value}}
}

// And returns a copy of f with one more term appended
func (f Filter) And(column string, value any) Filter {
	out := make(Filter, len(f), len(f)+1)
	copy(out, f)
	return append(out, Pair{Column: column, Value: value})
}

// Columns returns the column names in order
func (f Filter) Columns() []string {
	cols := make([]string, len(f))
	for i, p := range f {
		cols[i] = p.Column
	}
	return cols
}

// Values returns the values in order
func (f Filter) Values() []any {
	values := make([]any, len(f))
	for i, p := range f {
		values[i] = p.Value
	}
	return values
}

// clause renders "col = ?" terms joined by sep after checking every
// column against table's allow-list.
func (f Filter) clause(table, sep string) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, ErrEmptyFilter
	}

	terms := make([]string, len(f))
	for i, p := range f {
		if err := checkColumn(table, p.Column); err != nil {
			return "", nil, err
		}
		terms[i] = p.Column + " = ?"
	}

	return strings.Join(terms, sep), f.Values(), nil
}
