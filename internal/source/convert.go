package source

// convert.go turns raw text cells into typed record values.
//
// These functions handle the messy reality of exported spreadsheets:
//   - Multiple date formats (US, EU, ISO, etc.)
//   - Currency symbols and thousand separators in numbers
//   - Various boolean representations (yes/no, true/false, 1/0)
//   - Excel formula prefixes (="value")

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/deeptable/internal/column"
)

var (
	// ErrInvalidNumber is returned for numeric cells that do not parse.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrInvalidBoolean is returned for boolean cells that do not parse.
	ErrInvalidBoolean = errors.New("invalid boolean")

	// ErrEmptyCell is returned for empty non-string cells.
	ErrEmptyCell = errors.New("required field is empty")
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		time.RFC3339Nano, time.DateTime,
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// ConvertCell parses one text cell into the value domain of col.
// String cells keep their text (after CleanCell); every other type rejects
// an empty cell with ErrEmptyCell.
func ConvertCell(col column.Column, s string) (any, error) {
	s = CleanCell(s)
	if col.Type == column.TypeString {
		return s, nil
	}
	if s == "" {
		return nil, ErrEmptyCell
	}

	switch col.Type {
	case column.TypeBoolean:
		return ParseBool(s)
	case column.TypeInteger, column.TypeFloat:
		return ParseNumber(s)
	case column.TypeTimestamp:
		return ParseTimestamp(s), nil
	}
	return nil, fmt.Errorf("%w: %q", column.ErrUnknownType, col.Type)
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0, in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidBoolean, s)
}

// ParseNumber handles currency symbols, thousands separators and the
// accounting format (parentheses for negative).
func ParseNumber(s string) (float64, error) {
	orig := s
	s = strings.TrimSpace(s)

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, orig)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, orig)
	}
	return f, nil
}

// ParseTimestamp normalizes recognised date formats to RFC 3339. Anything
// else is kept verbatim, since timestamp cells may hold free-form text.
func ParseTimestamp(s string) string {
	s = strings.TrimSpace(s)

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339Nano)
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t.UTC().Format(time.RFC3339Nano)
		}
	}

	return s
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
