package column

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is returned when a column id is not in the registry.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrDuplicateColumn is returned when two columns share an id.
	ErrDuplicateColumn = errors.New("duplicate column id")

	// ErrEmptyID is returned for a column without an id.
	ErrEmptyID = errors.New("column id is empty")

	// ErrUnknownType is returned for an unrecognized column type.
	ErrUnknownType = errors.New("unknown column type")

	// ErrConflictingModes is returned for a column flagged both filterable
	// and searchable.
	ErrConflictingModes = errors.New("column cannot be both filterable and searchable")
)

// Registry is an immutable, ordered set of columns.
// It is safe for concurrent use since nothing mutates it after NewRegistry.
type Registry struct {
	columns []Column
	index   map[string]int
}

// NewRegistry validates cols and builds a registry preserving their order.
func NewRegistry(cols []Column) (*Registry, error) {
	r := &Registry{
		columns: make([]Column, len(cols)),
		index:   make(map[string]int, len(cols)),
	}

	for i, c := range cols {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, exists := r.index[c.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, c.ID)
		}
		r.columns[i] = c
		r.index[c.ID] = i
	}

	return r, nil
}

// ByID returns the column with the given id.
func (r *Registry) ByID(id string) (Column, bool) {
	i, ok := r.index[id]
	if !ok {
		return Column{}, false
	}
	return r.columns[i], true
}

// Lookup is ByID returning ErrUnknownColumn instead of a flag.
func (r *Registry) Lookup(id string) (Column, error) {
	c, ok := r.ByID(id)
	if !ok {
		return Column{}, fmt.Errorf("%w: %s", ErrUnknownColumn, id)
	}
	return c, nil
}

// Contains reports whether id names a registered column.
func (r *Registry) Contains(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Len returns the number of columns.
func (r *Registry) Len() int {
	return len(r.columns)
}

// All returns every column in declaration order.
func (r *Registry) All() []Column {
	return r.where(func(Column) bool { return true })
}

// IDs returns every column id in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.columns))
	for i, c := range r.columns {
		ids[i] = c.ID
	}
	return ids
}

// Filterable returns the columns flagged CanFilter.
func (r *Registry) Filterable() []Column {
	return r.where(func(c Column) bool { return c.CanFilter })
}

// Searchable returns the columns flagged CanSearch.
func (r *Registry) Searchable() []Column {
	return r.where(func(c Column) bool { return c.CanSearch })
}

// Orderable returns the columns flagged CanOrder.
func (r *Registry) Orderable() []Column {
	return r.where(func(c Column) bool { return c.CanOrder })
}

// Visible returns the columns that are rendered in the header and body.
func (r *Registry) Visible() []Column {
	return r.where(Column.Visible)
}

func (r *Registry) where(keep func(Column) bool) []Column {
	result := make([]Column, 0, len(r.columns))
	for _, c := range r.columns {
		if keep(c) {
			result = append(result, c)
		}
	}
	return result
}
