package view

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/filter"
	"github.com/JonMunkholm/deeptable/internal/pager"
	"github.com/JonMunkholm/deeptable/internal/record"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"config wraps sentinel", &ConfigError{Op: "records", Err: fmt.Errorf("record 3: %w", record.ErrMissingValue)}, "CFG005"},
		{"conflicting modes", &ConfigError{Op: "columns", Err: column.ErrConflictingModes}, "CFG004"},
		{"unknown column", &MutationError{Op: "toggle sort", Column: "x", Err: column.ErrUnknownColumn}, "MUT001"},
		{"not filterable", &MutationError{Op: "set filter", Column: "x", Err: filter.ErrNotFilterable}, "MUT002"},
		{"page size", &MutationError{Op: "set page size", Err: pager.ErrInvalidPageSize}, "MUT006"},
		{"row out of range", &MutationError{Op: "edit", Err: ErrRowOutOfRange}, "MUT007"},
		{"source errors are not the engine's", errors.New("read header: empty file"), "ERR000"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(&MutationError{Op: "edit", Err: ErrRowOutOfRange})
	want := "Row not found (Code: MUT007). Refresh the page and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Errorf("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if Messages.IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !Messages.IsUserFacing(filter.ErrInvalidValue) {
		t.Error("IsUserFacing(ErrInvalidValue) = false")
	}
	if Messages.IsUserFacing(errors.New("kaboom")) {
		t.Error("IsUserFacing(unknown) = true")
	}
}

func TestCatalog_With(t *testing.T) {
	errBusy := errors.New("busy")
	busy := UserMessage{Message: "Busy", Action: "Wait", Code: "EXT001"}
	gone := UserMessage{Message: "Gone", Action: "Look elsewhere", Code: "EXT002"}
	ext := Messages.With(
		[]SentinelMessage{{Target: errBusy, Msg: busy}},
		[]PatternMessage{{Pattern: "no longer here", Msg: gone}},
	)

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"engine sentinel still first", &MutationError{Op: "edit", Err: ErrRowOutOfRange}, "MUT007"},
		{"added sentinel through wrapping", fmt.Errorf("load: %w", errBusy), "EXT001"},
		{"pattern is case insensitive", errors.New("Row No Longer Here"), "EXT002"},
		{"fallback", errors.New("kaboom"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ext.Map(tt.err); got.Code != tt.wantCode {
				t.Errorf("Map() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}

	if got := Messages.Map(errBusy).Code; got != "ERR000" {
		t.Errorf("With() changed the receiver: code = %q", got)
	}
}

func TestMutationError_Message(t *testing.T) {
	err := &MutationError{Op: "set filter", Column: "status", Err: filter.ErrInvalidValue}
	if got, want := err.Error(), `set filter "status": invalid filter value`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
