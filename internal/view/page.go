package view

import (
	"slices"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/ordering"
	"github.com/JonMunkholm/deeptable/internal/record"
)

// Page is everything a renderer needs to draw the table at one moment.
type Page struct {
	Columns    []ColumnState   `json:"columns"`
	Rows       []record.Record `json:"rows"`
	FirstIndex int             `json:"firstIndex"` // displayed index of Rows[0]
	TotalRows  int             `json:"totalRows"`
	RawRows    int             `json:"rawRows"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	LastPage   int             `json:"lastPage"`
	Window     []int           `json:"window"`
	Sort       *ordering.State `json:"sort,omitempty"`
	Flags      Flags           `json:"flags"`
}

// ColumnState is a visible column with its current refinements.
type ColumnState struct {
	column.Column
	Align      column.Align       `json:"align"`
	Indicator  ordering.Indicator `json:"sort,omitempty"`
	SearchTerm *string            `json:"search,omitempty"`
	Filter     any                `json:"filter,omitempty"`
	Filterable bool               `json:"filterable"`
	Searchable bool               `json:"searchable"`
}

// Snapshot returns the current page with the state of every visible column.
func (t *Table) Snapshot() Page {
	first, _ := t.PageBounds()

	searchable := t.search.Columns()
	filterable := t.filters.Columns()

	var cols []ColumnState
	for _, c := range t.reg.Visible() {
		cs := ColumnState{Column: c, Align: c.DisplayAlign()}
		if c.CanOrder {
			cs.Indicator = t.sorter.Indicator(c.ID)
		}
		if slices.Contains(searchable, c.ID) {
			term := t.search.Term(c.ID)
			cs.SearchTerm = &term
			cs.Searchable = true
		}
		if slices.Contains(filterable, c.ID) {
			cs.Filterable = true
			cs.Filter, _ = t.filters.Value(c.ID)
		}
		cols = append(cols, cs)
	}

	return Page{
		Columns:    cols,
		Rows:       t.CurrentPageRecords(),
		FirstIndex: first,
		TotalRows:  t.TotalRowCount(),
		RawRows:    len(t.raw),
		Page:       t.CurrentPage(),
		PageSize:   t.PageSize(),
		LastPage:   t.LastPage(),
		Window:     t.PageWindow(),
		Sort:       t.SortState(),
		Flags:      t.flags,
	}
}
