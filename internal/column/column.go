// Package column describes the columns of a table view.
//
// A [Column] carries everything the view engine and its presentation layer
// need to know about one field of the record set: its identity, its data
// type and which refinements (filter, search, ordering) the user may apply
// to it. Columns are grouped in a [Registry], which is built once and never
// mutated afterwards.
package column

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is the declared data type of a column's values.
type Type string

const (
	TypeBoolean   Type = "Boolean"
	TypeInteger   Type = "Integer"
	TypeFloat     Type = "Float"
	TypeString    Type = "String"
	TypeTimestamp Type = "Timestamp"
)

// Valid reports whether t is one of the known column types.
func (t Type) Valid() bool {
	switch t {
	case TypeBoolean, TypeInteger, TypeFloat, TypeString, TypeTimestamp:
		return true
	}
	return false
}

// Numeric reports whether values of this type order numerically.
// Every type except String does.
func (t Type) Numeric() bool {
	return t != TypeString
}

// ParseType converts a case-insensitive type name to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean", "bool":
		return TypeBoolean, nil
	case "integer", "int":
		return TypeInteger, nil
	case "float", "number":
		return TypeFloat, nil
	case "string", "text":
		return TypeString, nil
	case "timestamp", "date", "datetime":
		return TypeTimestamp, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// UnmarshalJSON accepts any spelling understood by ParseType.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Align is the horizontal alignment hint for a column's cells.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Column defines one column of a table view.
type Column struct {
	ID    string `json:"id"`    // Key into every record
	Label string `json:"label"` // Header text
	Type  Type   `json:"type"`

	// Presentation hints. The view engine itself ignores these.
	MinWidth  int   `json:"minWidth,omitempty"`
	Align     Align `json:"align,omitempty"`
	Invisible bool  `json:"invisible,omitempty"`
	Highlight bool  `json:"highlight,omitempty"`

	// Refinement capabilities. CanFilter and CanSearch are mutually exclusive.
	CanFilter bool `json:"canFilter,omitempty"`
	CanSearch bool `json:"canSearch,omitempty"`
	CanOrder  bool `json:"canOrder,omitempty"`

	// Format renders a cell value for display. Optional.
	Format func(v any) string `json:"-"`
}

// Visible reports whether the column is rendered in the header and body.
func (c Column) Visible() bool {
	return !c.Invisible
}

// DisplayAlign returns the cell alignment, defaulting to center like the
// header cells do when no hint is given.
func (c Column) DisplayAlign() Align {
	if c.Align == "" {
		return AlignCenter
	}
	return c.Align
}

// validate checks the column on its own, without regard to its siblings.
func (c Column) validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if !c.Type.Valid() {
		return fmt.Errorf("column %q: %w: %q", c.ID, ErrUnknownType, c.Type)
	}
	if c.CanFilter && c.CanSearch {
		return fmt.Errorf("column %q: %w", c.ID, ErrConflictingModes)
	}
	return nil
}
