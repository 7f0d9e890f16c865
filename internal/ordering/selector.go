// Package ordering implements the single-key sort selector of a table view.
//
// Clicking a column's sort indicator cycles it through
// Unsorted → Ascending → Descending → Unsorted. Only one column is ever
// sorted; selecting another column replaces the active key and starts it at
// Ascending.
package ordering

import (
	"errors"
	"fmt"
	"slices"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/record"
)

// ErrNotOrderable is returned when toggling a column not flagged CanOrder.
var ErrNotOrderable = errors.New("column is not orderable")

// Direction is the direction of the active sort key.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "Descending"
	}
	return "Ascending"
}

// MarshalText encodes the direction as "asc" or "desc".
func (d Direction) MarshalText() ([]byte, error) {
	if d == Descending {
		return []byte("desc"), nil
	}
	return []byte("asc"), nil
}

// Indicator is the state of one column's sort arrow.
type Indicator string

const (
	IndicatorNeutral    Indicator = "Neutral"
	IndicatorAscending  Indicator = "Ascending"
	IndicatorDescending Indicator = "Descending"
)

// State is the active sort key.
type State struct {
	ColumnID  string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Selector holds the optional active sort key.
// The zero value is not usable; create one with NewSelector.
type Selector struct {
	reg    *column.Registry
	active *State // nil means no active sort
}

// NewSelector returns a selector with no active sort.
func NewSelector(reg *column.Registry) *Selector {
	return &Selector{reg: reg}
}

// Toggle advances the sort cycle for columnID.
func (s *Selector) Toggle(columnID string) error {
	col, err := s.reg.Lookup(columnID)
	if err != nil {
		return err
	}
	if !col.CanOrder {
		return fmt.Errorf("%w: %s", ErrNotOrderable, columnID)
	}

	switch {
	case s.active == nil || s.active.ColumnID != columnID:
		s.active = &State{ColumnID: columnID, Direction: Ascending}
	case s.active.Direction == Ascending:
		s.active = &State{ColumnID: columnID, Direction: Descending}
	default:
		s.active = nil
	}
	return nil
}

// State returns the active sort key, if any.
func (s *Selector) State() (State, bool) {
	if s.active == nil {
		return State{}, false
	}
	return *s.active, true
}

// Indicator returns the arrow state for columnID.
func (s *Selector) Indicator(columnID string) Indicator {
	if s.active == nil || s.active.ColumnID != columnID {
		return IndicatorNeutral
	}
	if s.active.Direction == Descending {
		return IndicatorDescending
	}
	return IndicatorAscending
}

// Clear removes the active sort.
func (s *Selector) Clear() {
	s.active = nil
}

// Restore replaces the selector state. A nil state clears it.
func (s *Selector) Restore(st *State) {
	if st == nil {
		s.active = nil
		return
	}
	cp := *st
	s.active = &cp
}

// Apply sorts rows in place by the active key. Ascending is a stable sort;
// Descending reverses the stable ascending result, so rows with equal keys
// come out in reverse of their input order.
func (s *Selector) Apply(rows []record.Record, coll *Collator) {
	if s.active == nil {
		return
	}
	col, ok := s.reg.ByID(s.active.ColumnID)
	if !ok {
		return
	}
	Sort(rows, col, s.active.Direction, coll)
}

// Sort orders rows in place by col in the given direction.
func Sort(rows []record.Record, col column.Column, dir Direction, coll *Collator) {
	cmp := Comparator(col, coll)
	slices.SortStableFunc(rows, func(a, b record.Record) int {
		return cmp(a[col.ID], b[col.ID])
	})
	if dir == Descending {
		slices.Reverse(rows)
	}
}
