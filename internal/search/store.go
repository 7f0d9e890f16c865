// Package search implements per-column substring search.
//
// Only visible columns flagged CanSearch get a search term. A record
// passes when, for every non-empty term, the stringified cell contains the
// term. Matching is case-sensitive. An empty term is no constraint.
package search

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/record"
)

// ErrNotSearchable is returned for columns without a search term.
var ErrNotSearchable = errors.New("column is not searchable")

// Store holds the search terms of one view.
type Store struct {
	reg     *column.Registry
	columns []string
	terms   map[string]string
}

// NewStore creates a store with every term empty.
func NewStore(reg *column.Registry) *Store {
	s := &Store{
		reg:   reg,
		terms: make(map[string]string),
	}
	for _, c := range reg.Searchable() {
		if c.Visible() {
			s.columns = append(s.columns, c.ID)
			s.terms[c.ID] = ""
		}
	}
	return s
}

// Columns returns the ids of the searchable columns, in registry order.
func (s *Store) Columns() []string {
	return slices.Clone(s.columns)
}

// Set replaces the search term of one column.
func (s *Store) Set(columnID, term string) error {
	if _, err := s.reg.Lookup(columnID); err != nil {
		return err
	}
	if _, ok := s.terms[columnID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotSearchable, columnID)
	}
	s.terms[columnID] = term
	return nil
}

// Term returns the search term of a column; empty when unset.
func (s *Store) Term(columnID string) string {
	return s.terms[columnID]
}

// Active returns the non-empty terms.
func (s *Store) Active() map[string]string {
	active := make(map[string]string)
	for id, term := range s.terms {
		if term != "" {
			active[id] = term
		}
	}
	return active
}

// Clear empties every term.
func (s *Store) Clear() {
	for id := range s.terms {
		s.terms[id] = ""
	}
}

// Snapshot returns a copy of the terms, for Restore.
func (s *Store) Snapshot() map[string]string {
	return maps.Clone(s.terms)
}

// Restore replaces the terms with a Snapshot.
func (s *Store) Restore(snap map[string]string) {
	s.terms = maps.Clone(snap)
}

// Matches reports whether r satisfies every non-empty term.
func (s *Store) Matches(r record.Record) bool {
	for _, id := range s.columns {
		term := s.terms[id]
		if term == "" {
			continue
		}
		if !strings.Contains(record.Stringify(r[id]), term) {
			return false
		}
	}
	return true
}

// Apply returns the matching rows in their original order.
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
