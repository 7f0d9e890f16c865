// Package source loads record sets and column definitions from outside the
// view engine, and writes displayed rows back out.
//
// Records always arrive as a full replacement set: a Loader returns every
// row, and the caller hands the slice to view.Table.ReplaceRecords.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/record"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor JSON.
	ErrUnsupportedFormat = errors.New("unsupported data format")

	// ErrEmptyFile is returned for input without a header or any content.
	ErrEmptyFile = errors.New("empty file")

	// ErrMissingColumn is returned when a header lacks a registered column.
	ErrMissingColumn = errors.New("column not found in header")

	// ErrInvalidCSV wraps CSV syntax errors.
	ErrInvalidCSV = errors.New("invalid csv")

	// ErrInvalidJSON wraps JSON syntax and shape errors.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrInvalidColumns is returned for unreadable column descriptor files.
	ErrInvalidColumns = errors.New("invalid column descriptor")
)

// Loader produces a complete record set.
type Loader interface {
	Load(ctx context.Context) ([]record.Record, error)
}

// Format is the encoding of a data file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// File loads records from a CSV or JSON file, re-reading it on every Load.
type File struct {
	Path     string
	Format   Format
	Registry *column.Registry
}

// NewFile returns a loader for path, with the format taken from its
// extension.
func NewFile(path string, reg *column.Registry) (*File, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Format: format, Registry: reg}, nil
}

// Load implements Loader.
func (f *File) Load(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file, f.Format, f.Registry)
}

// Read decodes r in the given format.
func Read(r io.Reader, format Format, reg *column.Registry) ([]record.Record, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r, reg)
	case FormatJSON:
		return ReadJSON(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ReadJSON decodes an array of objects. Numbers are kept exact as
// json.Number until record ingestion converts them.
func ReadJSON(r io.Reader) ([]record.Record, error) {
	dec := json.NewDecoder(wrapInput(r))
	dec.UseNumber()

	var rows []record.Record
	if err := dec.Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return rows, nil
}

// LoadColumns reads column definitions from a JSON file. Comments and
// trailing commas are allowed.
func LoadColumns(path string) ([]column.Column, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	cols, err := ParseColumns(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cols, nil
}

// ParseColumns decodes a JSON (with comments) array of column definitions.
func ParseColumns(data []byte) ([]column.Column, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidColumns, err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	var cols []column.Column
	if err := dec.Decode(&cols); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidColumns, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidColumns)
	}
	return cols, nil
}

// ExportFile writes rows as CSV to path. The file is replaced atomically,
// so readers never see a partial export.
func ExportFile(path string, cols []column.Column, rows []record.Record) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, cols, rows); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
