// Package filter implements per-column, single-value equality filters.
//
// Only visible columns flagged CanFilter get a filter. Each holds one
// selected value or nothing; set filters combine with logical AND. The
// values offered for selection (candidates) are the distinct values of the
// raw, unfiltered record set, so they never shrink as other filters apply.
package filter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/ordering"
	"github.com/JonMunkholm/deeptable/internal/record"
)

var (
	// ErrNotFilterable is returned for columns without a filter.
	ErrNotFilterable = errors.New("column is not filterable")

	// ErrInvalidValue is returned when a filter value cannot be coerced to
	// the column type.
	ErrInvalidValue = errors.New("invalid filter value")
)

// Store holds the filter state of one view.
type Store struct {
	reg        *column.Registry
	coll       *ordering.Collator
	columns    []string
	values     map[string]any
	candidates map[string][]any
}

// NewStore creates a store with every filter unset.
func NewStore(reg *column.Registry, coll *ordering.Collator) *Store {
	s := &Store{
		reg:        reg,
		coll:       coll,
		values:     make(map[string]any),
		candidates: make(map[string][]any),
	}
	for _, c := range reg.Filterable() {
		if c.Visible() {
			s.columns = append(s.columns, c.ID)
			s.values[c.ID] = nil
		}
	}
	return s
}

// Columns returns the ids of the filterable columns, in registry order.
func (s *Store) Columns() []string {
	return slices.Clone(s.columns)
}

// Refresh recomputes the candidate values from the raw record set.
func (s *Store) Refresh(raw []record.Record) {
	s.candidates = make(map[string][]any, len(s.columns))
	for _, id := range s.columns {
		col, _ := s.reg.ByID(id)
		s.candidates[id] = Candidates(raw, col, s.coll)
	}
}

// Candidates returns the distinct raw values offered for columnID.
func (s *Store) Candidates(columnID string) ([]any, error) {
	if err := s.check(columnID); err != nil {
		return nil, err
	}
	return slices.Clone(s.candidates[columnID]), nil
}

// Set replaces the filter value of one column. A nil or empty-string value
// unsets the filter. Other filters are untouched.
func (s *Store) Set(columnID string, value any) error {
	if err := s.check(columnID); err != nil {
		return err
	}
	col, _ := s.reg.ByID(columnID)

	v, err := Coerce(col, value)
	if err != nil {
		return err
	}
	if col.Type == column.TypeTimestamp {
		v = s.epochValue(columnID, v)
	}
	s.values[columnID] = v
	return nil
}

// epochValue turns a numeric string into a number when the timestamp column
// holds epoch numbers and not that exact string.
func (s *Store) epochValue(columnID string, v any) any {
	str, ok := v.(string)
	if !ok || slices.Contains(s.candidates[columnID], any(str)) {
		return v
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return v
	}
	for _, c := range s.candidates[columnID] {
		if _, isNum := c.(float64); isNum {
			return f
		}
	}
	return v
}

// Value returns the filter value of a column and whether it is set.
func (s *Store) Value(columnID string) (any, bool) {
	v := s.values[columnID]
	return v, v != nil
}

// Active returns the set filters.
func (s *Store) Active() map[string]any {
	active := make(map[string]any)
	for id, v := range s.values {
		if v != nil {
			active[id] = v
		}
	}
	return active
}

// Clear unsets every filter.
func (s *Store) Clear() {
	for id := range s.values {
		s.values[id] = nil
	}
}

// Snapshot returns a copy of the filter values, for Restore.
func (s *Store) Snapshot() map[string]any {
	return maps.Clone(s.values)
}

// Restore replaces the filter values with a Snapshot.
func (s *Store) Restore(snap map[string]any) {
	s.values = maps.Clone(snap)
}

// Matches reports whether r passes every set filter.
func (s *Store) Matches(r record.Record) bool {
	for _, id := range s.columns {
		want := s.values[id]
		if want == nil {
			continue
		}
		if !record.Equal(r[id], want) {
			return false
		}
	}
	return true
}

// Apply returns the rows passing every set filter, in their original order.
// The input slice is not modified.
func (s *Store) Apply(rows []record.Record) []record.Record {
	out := make([]record.Record, 0, len(rows))
	for _, r := range rows {
		if s.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) check(columnID string) error {
	if _, err := s.reg.Lookup(columnID); err != nil {
		return err
	}
	if _, ok := s.values[columnID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFilterable, columnID)
	}
	return nil
}

// Coerce converts a selected filter value to the column's value domain so
// it can be compared with strict equality. Selection controls usually hand
// over strings: "true"/"false" become booleans for Boolean columns and
// numeric strings become numbers for Integer and Float columns.
func Coerce(col column.Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(string); ok && s == "" {
		return nil, nil
	}

	v, err := record.Normalize(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	switch col.Type {
	case column.TypeBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(x))
			if err == nil {
				return b, nil
			}
		}
	case column.TypeInteger, column.TypeFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err == nil {
				return f, nil
			}
		}
	case column.TypeString:
		return record.Stringify(v), nil
	case column.TypeTimestamp:
		switch v.(type) {
		case string, float64:
			return v, nil
		}
	}

	return nil, fmt.Errorf("%w: %v for %s column %q", ErrInvalidValue, value, col.Type, col.ID)
}
