package column

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColumns() []Column {
	return []Column{
		{ID: "id", Label: "ID", Type: TypeInteger, CanOrder: true},
		{ID: "postId", Label: "Post ID", Type: TypeInteger, CanFilter: true},
		{ID: "name", Label: "Name", Type: TypeString, CanSearch: true, CanOrder: true},
		{ID: "secret", Label: "Secret", Type: TypeString, Invisible: true, CanFilter: true},
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(testColumns())
	require.NoError(t, err)

	assert.Equal(t, 4, r.Len())
	assert.Equal(t, []string{"id", "postId", "name", "secret"}, r.IDs())
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name string
		cols []Column
		want error
	}{
		{
			name: "empty id",
			cols: []Column{{ID: " ", Type: TypeString}},
			want: ErrEmptyID,
		},
		{
			name: "duplicate id",
			cols: []Column{{ID: "a", Type: TypeString}, {ID: "a", Type: TypeInteger}},
			want: ErrDuplicateColumn,
		},
		{
			name: "unknown type",
			cols: []Column{{ID: "a", Type: "Money"}},
			want: ErrUnknownType,
		},
		{
			name: "filter and search",
			cols: []Column{{ID: "a", Type: TypeString, CanFilter: true, CanSearch: true}},
			want: ErrConflictingModes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.cols)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegistry_ByID(t *testing.T) {
	r, err := NewRegistry(testColumns())
	require.NoError(t, err)

	c, ok := r.ByID("name")
	require.True(t, ok)
	assert.Equal(t, "Name", c.Label)

	_, ok = r.ByID("missing")
	assert.False(t, ok)

	_, err = r.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.True(t, r.Contains("postId"))
}

func TestRegistry_Subsets(t *testing.T) {
	r, err := NewRegistry(testColumns())
	require.NoError(t, err)

	ids := func(cols []Column) []string {
		out := make([]string, len(cols))
		for i, c := range cols {
			out[i] = c.ID
		}
		return out
	}

	assert.Equal(t, []string{"postId", "secret"}, ids(r.Filterable()))
	assert.Equal(t, []string{"name"}, ids(r.Searchable()))
	assert.Equal(t, []string{"id", "name"}, ids(r.Orderable()))
	assert.Equal(t, []string{"id", "postId", "name"}, ids(r.Visible()))
}

func TestRegistry_DoesNotAliasInput(t *testing.T) {
	cols := testColumns()
	r, err := NewRegistry(cols)
	require.NoError(t, err)

	cols[0].Label = "changed"
	c, _ := r.ByID("id")
	assert.Equal(t, "ID", c.Label)
}

func TestType_UnmarshalJSON(t *testing.T) {
	var c Column
	err := json.Unmarshal([]byte(`{"id":"n","type":"int","canOrder":true}`), &c)
	require.NoError(t, err)
	assert.Equal(t, TypeInteger, c.Type)
	assert.True(t, c.CanOrder)

	err = json.Unmarshal([]byte(`{"id":"n","type":"money"}`), &c)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestColumn_DisplayAlign(t *testing.T) {
	assert.Equal(t, AlignCenter, Column{}.DisplayAlign())
	assert.Equal(t, AlignRight, Column{Align: AlignRight}.DisplayAlign())
}

func TestType_Numeric(t *testing.T) {
	assert.False(t, TypeString.Numeric())
	for _, typ := range []Type{TypeBoolean, TypeInteger, TypeFloat, TypeTimestamp} {
		assert.True(t, typ.Numeric(), typ)
	}
}
