package source

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/record"
)

func testColumns() []column.Column {
	return []column.Column{
		{ID: "id", Label: "ID", Type: column.TypeInteger, CanOrder: true},
		{ID: "name", Label: "Full Name", Type: column.TypeString, CanSearch: true},
		{ID: "active", Label: "Active", Type: column.TypeBoolean, CanFilter: true},
		{ID: "joined", Label: "Joined", Type: column.TypeTimestamp},
	}
}

func testRegistry(t *testing.T) *column.Registry {
	t.Helper()
	reg, err := column.NewRegistry(testColumns())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBFFull Name,id,ACTIVE,joined,extra\n" +
		"John,1,yes,2024-01-15,x\n" +
		"\"Doe, Jane\",\"$1,002\",false,01/02/2023,y\n"

	got, err := ReadCSV(strings.NewReader(input), testRegistry(t))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	want := []record.Record{
		{"id": 1.0, "name": "John", "active": true, "joined": "2024-01-15T00:00:00Z"},
		{"id": 1002.0, "name": "Doe, Jane", "active": false, "joined": "2023-01-02T00:00:00Z"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadCSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrEmptyFile},
		{"missing column", "id,name,active\n1,a,true\n", ErrMissingColumn},
		{"bad number", "id,name,active,joined\none,a,true,x\n", ErrInvalidNumber},
		{"bad boolean", "id,name,active,joined\n1,a,maybe,x\n", ErrInvalidBoolean},
		{"empty number", "id,name,active,joined\n,a,true,x\n", ErrEmptyCell},
		{"short row", "id,name,active,joined\n1,a\n", ErrEmptyCell},
		{"bad quoting", "id,name,active,joined\n1,\"a\"b,true,x\n", ErrInvalidCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), testRegistry(t))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadCSV() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadCSV_ErrorNamesRow(t *testing.T) {
	input := "id,name,active,joined\n1,a,true,x\n2,b,nope,x\n"

	_, err := ReadCSV(strings.NewReader(input), testRegistry(t))
	if err == nil || !strings.Contains(err.Error(), `row 3: column "active"`) {
		t.Errorf("ReadCSV() error = %v, want row 3 column active", err)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	cols := testColumns()
	rows := []record.Record{
		{"id": 1.0, "name": "Doe, Jane", "active": true, "joined": "2024-01-15T00:00:00Z"},
		{"id": 2.5, "name": "Bob", "active": false, "joined": "2023-01-02T00:00:00Z"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, cols, rows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	wantText := "ID,Full Name,Active,Joined\n" +
		"1,\"Doe, Jane\",true,2024-01-15T00:00:00Z\n" +
		"2.5,Bob,false,2023-01-02T00:00:00Z\n"
	if buf.String() != wantText {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", buf.String(), wantText)
	}

	back, err := ReadCSV(&buf, testRegistry(t))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if diff := cmp.Diff(rows, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_UsesFormat(t *testing.T) {
	cols := []column.Column{{
		ID:     "price",
		Type:   column.TypeFloat,
		Format: func(v any) string { return "$" + record.Stringify(v) },
	}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, cols, []record.Record{{"price": 3.0}}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := buf.String(); got != "price\n$3\n" {
		t.Errorf("WriteCSV() = %q, want %q", got, "price\n$3\n")
	}
}
