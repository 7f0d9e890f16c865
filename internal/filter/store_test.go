package filter

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/ordering"
	"github.com/JonMunkholm/deeptable/internal/record"
)

func newTestStore(t *testing.T) (*Store, []record.Record) {
	t.Helper()
	reg, err := column.NewRegistry([]column.Column{
		{ID: "id", Type: column.TypeInteger},
		{ID: "postId", Type: column.TypeInteger, CanFilter: true},
		{ID: "status", Type: column.TypeString, CanFilter: true},
		{ID: "active", Type: column.TypeBoolean, CanFilter: true},
		{ID: "hidden", Type: column.TypeString, CanFilter: true, Invisible: true},
		{ID: "name", Type: column.TypeString, CanSearch: true},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	rows := []record.Record{
		{"id": 1.0, "postId": 2.0, "status": "b", "active": true, "hidden": "x", "name": "a"},
		{"id": 2.0, "postId": 10.0, "status": "A", "active": false, "hidden": "x", "name": "b"},
		{"id": 3.0, "postId": 2.0, "status": "a", "active": true, "hidden": "y", "name": "c"},
		{"id": 4.0, "postId": 1.0, "status": "b", "active": false, "hidden": "y", "name": "d"},
	}

	s := NewStore(reg, ordering.NewCollator(language.English))
	s.Refresh(rows)
	return s, rows
}

func rowIDs(rows []record.Record) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r["id"].(float64)
	}
	return out
}

func TestNewStore_Columns(t *testing.T) {
	s, _ := newTestStore(t)

	// Invisible filterable columns get no filter.
	want := []string{"postId", "status", "active"}
	if diff := cmp.Diff(want, s.Columns()); diff != "" {
		t.Errorf("Columns() mismatch (-want +got):\n%s", diff)
	}
	if len(s.Active()) != 0 {
		t.Errorf("new store has active filters: %v", s.Active())
	}
}

func TestStore_Candidates(t *testing.T) {
	s, _ := newTestStore(t)

	tests := []struct {
		column string
		want   []any
	}{
		{"postId", []any{1.0, 2.0, 10.0}}, // numeric, not lexicographic
		{"status", []any{"a", "A", "b"}}, // collated
		{"active", []any{false, true}},
	}

	for _, tt := range tests {
		got, err := s.Candidates(tt.column)
		if err != nil {
			t.Fatalf("Candidates(%s) error = %v", tt.column, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Candidates(%s) mismatch (-want +got):\n%s", tt.column, diff)
		}
	}
}

func TestStore_CandidatesDoNotShrink(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Set("status", "b"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, _ := s.Candidates("postId")
	if len(got) != 3 {
		t.Errorf("candidates shrank under filter: %v", got)
	}
}

func TestStore_ApplyAND(t *testing.T) {
	s, rows := newTestStore(t)

	if err := s.Set("postId", "2"); err != nil {
		t.Fatalf("Set(postId) error = %v", err)
	}
	if diff := cmp.Diff([]float64{1, 3}, rowIDs(s.Apply(rows))); diff != "" {
		t.Errorf("single filter mismatch (-want +got):\n%s", diff)
	}

	if err := s.Set("status", "a"); err != nil {
		t.Fatalf("Set(status) error = %v", err)
	}
	if diff := cmp.Diff([]float64{3}, rowIDs(s.Apply(rows))); diff != "" {
		t.Errorf("AND filters mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_BooleanFromString(t *testing.T) {
	s, rows := newTestStore(t)

	if err := s.Set("active", "false"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok := s.Value("active")
	if !ok || v != false {
		t.Errorf("Value() = %#v, %v; want false, true", v, ok)
	}
	if diff := cmp.Diff([]float64{2, 4}, rowIDs(s.Apply(rows))); diff != "" {
		t.Errorf("boolean filter mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Unset(t *testing.T) {
	s, rows := newTestStore(t)

	_ = s.Set("status", "b")
	if err := s.Set("status", nil); err != nil {
		t.Fatalf("Set(nil) error = %v", err)
	}
	if got := len(s.Apply(rows)); got != len(rows) {
		t.Errorf("after unset Apply() len = %d, want %d", got, len(rows))
	}

	_ = s.Set("status", "b")
	_ = s.Set("status", "")
	if _, ok := s.Value("status"); ok {
		t.Error(`Set("") did not unset the filter`)
	}
}

func TestStore_SetErrors(t *testing.T) {
	s, _ := newTestStore(t)

	tests := []struct {
		column string
		value  any
		want   error
	}{
		{"name", "a", ErrNotFilterable},
		{"hidden", "x", ErrNotFilterable},
		{"missing", "x", column.ErrUnknownColumn},
		{"active", "maybe", ErrInvalidValue},
		{"postId", "two", ErrInvalidValue},
		{"postId", true, ErrInvalidValue},
	}

	for _, tt := range tests {
		err := s.Set(tt.column, tt.value)
		if !errors.Is(err, tt.want) {
			t.Errorf("Set(%s, %v) error = %v, want %v", tt.column, tt.value, err, tt.want)
		}
	}
	if len(s.Active()) != 0 {
		t.Errorf("rejected Set changed state: %v", s.Active())
	}
}

func TestStore_SnapshotRestore(t *testing.T) {
	s, _ := newTestStore(t)

	_ = s.Set("status", "a")
	snap := s.Snapshot()
	_ = s.Set("status", "b")
	s.Restore(snap)

	if v, _ := s.Value("status"); v != "a" {
		t.Errorf("Value() after Restore = %v, want a", v)
	}

	s.Clear()
	if len(s.Active()) != 0 {
		t.Errorf("Clear() left filters: %v", s.Active())
	}
}

func TestStore_TimestampFromNumericString(t *testing.T) {
	reg, err := column.NewRegistry([]column.Column{
		{ID: "id", Type: column.TypeInteger},
		{ID: "created", Type: column.TypeTimestamp, CanFilter: true},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	rows := []record.Record{
		{"id": 1.0, "created": 1700000000000.0},
		{"id": 2.0, "created": "1700000000000"},
		{"id": 3.0, "created": 1700000000000.0},
		{"id": 4.0, "created": "2024-01-01"},
	}
	s := NewStore(reg, ordering.NewCollator(language.English))
	s.Refresh(rows[:1])

	if err := s.Set("created", "1700000000000"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v, _ := s.Value("created"); v != 1700000000000.0 {
		t.Errorf("Value() = %#v, want the epoch number", v)
	}
	if diff := cmp.Diff([]float64{1, 3}, rowIDs(s.Apply(rows))); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}

	// A column holding the exact string keeps string equality.
	s.Refresh(rows)
	if err := s.Set("created", "1700000000000"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if diff := cmp.Diff([]float64{2}, rowIDs(s.Apply(rows))); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}

	if err := s.Set("created", "2024-01-01"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if diff := cmp.Diff([]float64{4}, rowIDs(s.Apply(rows))); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}
