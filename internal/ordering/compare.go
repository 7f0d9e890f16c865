package ordering

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/record"
)

// DefaultLocale is used when no locale is configured.
var DefaultLocale = language.English

// Collator compares strings using locale-aware collation rules.
// Like the underlying collate.Collator it is not safe for concurrent use;
// each view owns its own.
type Collator struct {
	c *collate.Collator
}

// NewCollator returns a collator for the given locale.
func NewCollator(tag language.Tag) *Collator {
	if tag == language.Und {
		tag = DefaultLocale
	}
	return &Collator{c: collate.New(tag)}
}

// Compare returns -1, 0 or 1.
func (c *Collator) Compare(a, b string) int {
	return c.c.CompareString(a, b)
}

// Comparator returns the ascending comparison function for values of col.
//
// String columns compare the stringified values with the collator. Every
// other type compares numerically: Timestamp values are read as epoch
// milliseconds, the rest are coerced to numbers. Values that cannot be
// coerced compare equal to everything, so a stable sort leaves them put.
func Comparator(col column.Column, coll *Collator) func(a, b any) int {
	switch col.Type {
	case column.TypeString:
		return func(a, b any) int {
			return coll.Compare(record.Stringify(a), record.Stringify(b))
		}
	case column.TypeTimestamp:
		return func(a, b any) int {
			return record.CompareNumbers(record.TimestampNumber(a), record.TimestampNumber(b))
		}
	default:
		return func(a, b any) int {
			return record.CompareNumbers(record.ToNumber(a), record.ToNumber(b))
		}
	}
}
