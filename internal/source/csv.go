package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/record"
)

// HeaderIndex maps a lower-cased header cell to its position.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// Find returns the position of a column, matched by id first and by label
// second.
func (h HeaderIndex) Find(col column.Column) (int, bool) {
	if i, ok := h[strings.ToLower(col.ID)]; ok {
		return i, true
	}
	if col.Label == "" {
		return 0, false
	}
	i, ok := h[strings.ToLower(col.Label)]
	return i, ok
}

// ReadCSV decodes a CSV stream with a header row into records holding a
// typed value for every registered column. Header cells may name a column
// by id or by label; unknown header cells are ignored.
func ReadCSV(r io.Reader, reg *column.Registry) ([]record.Record, error) {
	cr := csv.NewReader(wrapInput(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidCSV, err)
	}

	cols := reg.All()
	hdr := MakeHeaderIndex(header)
	positions := make([]int, len(cols))
	var missing []string
	for i, c := range cols {
		pos, ok := hdr.Find(c)
		if !ok {
			missing = append(missing, c.ID)
			continue
		}
		positions[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	var out []record.Record
	for rowNum := 2; ; rowNum++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
		}

		rec := make(record.Record, len(cols))
		for i, c := range cols {
			cell := ""
			if positions[i] < len(row) {
				cell = row[positions[i]]
			}
			v, err := ConvertCell(c, cell)
			if err != nil {
				return nil, fmt.Errorf("row %d: column %q: %w", rowNum, c.ID, err)
			}
			rec[c.ID] = v
		}
		out = append(out, rec)
	}

	return out, nil
}

// WriteCSV writes a header of column labels followed by one line per row.
// Cells use the column's Format when set and the display string otherwise.
func WriteCSV(w io.Writer, cols []column.Column, rows []record.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Label
		if header[i] == "" {
			header[i] = c.ID
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	line := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			line[i] = FormatCell(c, r[c.ID])
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatCell renders a value for display.
func FormatCell(c column.Column, v any) string {
	if c.Format != nil {
		return c.Format(v)
	}
	return record.Stringify(v)
}
