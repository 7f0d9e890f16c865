// Package record holds the row model of a table view and the value
// coercions shared by filtering, searching and ordering.
//
// Values are normalized on ingestion so that every downstream comparison
// deals with exactly three dynamic types: bool, float64 and string.
// Numbers of any Go numeric type (and json.Number) become float64, and
// time.Time becomes an RFC 3339 string.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/JonMunkholm/deeptable/internal/column"
)

var (
	// ErrMissingValue is returned when a record lacks a registered column.
	ErrMissingValue = errors.New("record missing value for column")

	// ErrTypeMismatch is returned when a value disagrees with its column type.
	ErrTypeMismatch = errors.New("value does not match column type")

	// ErrUnsupportedValue is returned for values that are not bool, number or string.
	ErrUnsupportedValue = errors.New("unsupported value type")
)

// Record is one row: a mapping from column id to value.
// Records handed to a view must be treated as read-only by the caller.
type Record map[string]any

// Clone returns a shallow copy of r. Values are immutable scalars, so a
// shallow copy is a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Normalize converts v to one of the canonical dynamic types.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case bool, string, float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: json number %q", ErrUnsupportedValue, x.String())
		}
		return f, nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	case nil:
		return nil, ErrMissingValue
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// CheckType reports whether a normalized value agrees with a column type.
// Timestamps may be strings or numeric epochs.
func CheckType(t column.Type, v any) bool {
	switch v.(type) {
	case bool:
		return t == column.TypeBoolean
	case float64:
		return t == column.TypeInteger || t == column.TypeFloat || t == column.TypeTimestamp
	case string:
		return t == column.TypeString || t == column.TypeTimestamp
	}
	return false
}

// Ingest validates raw rows against the registry and returns owned,
// normalized copies. The input is never modified.
//
// Every registered column must be present in every record; extra keys are
// carried along untouched so callers may keep bookkeeping fields.
func Ingest(reg *column.Registry, rows []Record) ([]Record, error) {
	cols := reg.All()
	out := make([]Record, len(rows))

	for i, row := range rows {
		rec := make(Record, len(row))
		for k, v := range row {
			rec[k] = v
		}

		for _, c := range cols {
			raw, ok := row[c.ID]
			if !ok || raw == nil {
				return nil, fmt.Errorf("record %d: column %q: %w", i, c.ID, ErrMissingValue)
			}
			v, err := Normalize(raw)
			if err != nil {
				return nil, fmt.Errorf("record %d: column %q: %w", i, c.ID, err)
			}
			if !CheckType(c.Type, v) {
				return nil, fmt.Errorf("record %d: column %q: %w: %T for %s", i, c.ID, ErrTypeMismatch, raw, c.Type)
			}
			rec[c.ID] = v
		}

		out[i] = rec
	}

	return out, nil
}

// Equal reports strict equality of two normalized values: same dynamic
// type and same value. NaN is never equal to anything.
func Equal(a, b any) bool {
	return a == b
}

// Stringify renders a value the way a cell displays it and the way search
// terms are matched against it.
func Stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case nil:
		return ""
	default:
		if n, err := Normalize(v); err == nil {
			return Stringify(n)
		}
		return fmt.Sprint(v)
	}
}
