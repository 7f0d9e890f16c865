package view

import (
	"errors"
	"fmt"
)

// ErrRowOutOfRange is returned by the row hooks for an index outside the
// displayed sequence.
var ErrRowOutOfRange = errors.New("row index out of range")

// ConfigError reports column metadata or records the table cannot be built
// from. It wraps the column and record sentinels.
type ConfigError struct {
	Op  string // "columns", "records" or "page size"
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid table configuration: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MutationError reports a rejected mutation. The table state is unchanged
// when one is returned.
type MutationError struct {
	Op     string // e.g. "set filter"
	Column string // empty when the operation is not column-scoped
	Err    error
}

func (e *MutationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
