package record

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ToNumber coerces a normalized value to a number the way a dynamic
// language does: booleans are 0 or 1, blank strings are 0, strings that do
// not parse are NaN.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		switch s {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			if n, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
				return float64(n)
			}
			return math.NaN()
		}
		if strings.Trim(s, "0123456789+-.eE") != "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Out-of-range literals still carry a usable ±Inf or 0.
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return f
			}
			return math.NaN()
		}
		return f
	case nil:
		return 0
	}
	n, err := Normalize(v)
	if err != nil {
		return math.NaN()
	}
	return ToNumber(n)
}

// timestampLayouts are tried in order by TimestampNumber.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimestampNumber coerces a timestamp cell to milliseconds since the epoch.
// Numeric epochs pass through; strings are parsed with common layouts and
// fall back to ToNumber.
func TimestampNumber(v any) float64 {
	s, ok := v.(string)
	if !ok {
		return ToNumber(v)
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixMilli())
		}
	}
	return ToNumber(s)
}

// CompareNumbers orders two numbers by subtraction. A NaN on either side
// compares equal, which keeps a stable sort from moving the element.
func CompareNumbers(a, b float64) int {
	d := a - b
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

// formatNumber prints a float64 like a dynamic language's number-to-string:
// integral values have no fraction and very large or very small magnitudes
// use exponent notation.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits ("1e-07"); drop the padding.
		if i := strings.IndexAny(s, "e"); i >= 0 && i+2 < len(s) && s[i+2] == '0' && len(s) > i+3 {
			s = s[:i+2] + s[i+3:]
		}
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
