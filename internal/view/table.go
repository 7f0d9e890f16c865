// Package view derives the displayed rows of a table from its raw records.
//
// A Table owns the raw record set, the column registry and the refinement
// state (search terms, filters, sort key, page). Every mutation re-runs the
// pipeline
//
//	raw → search → filter → sort → displayed → page slice
//
// before it returns, and resets the current page to 1. A page-size change
// only re-clamps the current page. Table is not safe for concurrent use;
// callers sharing one between goroutines must serialise access.
package view

import (
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/text/language"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/filter"
	"github.com/JonMunkholm/deeptable/internal/ordering"
	"github.com/JonMunkholm/deeptable/internal/pager"
	"github.com/JonMunkholm/deeptable/internal/record"
	"github.com/JonMunkholm/deeptable/internal/search"
)

// Flags are presentation switches passed through to the renderer.
// The engine itself does not read them.
type Flags struct {
	DisplayHeader     bool `json:"displayHeader"`
	DisplayPagination bool `json:"displayPagination"`
	Selectable        bool `json:"selectable"`
	DisplayActions    bool `json:"displayActions"`
	AddButton         bool `json:"addButton"`
}

// DefaultFlags shows the header and the pagination bar.
func DefaultFlags() Flags {
	return Flags{DisplayHeader: true, DisplayPagination: true}
}

// Hooks are notified when the user asks to add, edit or delete a row.
// They receive the displayed index and a copy of the record; the table is
// never modified by their invocation.
type Hooks struct {
	OnAdd    func()
	OnEdit   func(index int, r record.Record)
	OnDelete func(index int, r record.Record)
}

// Config holds the optional settings of a Table.
type Config struct {
	Flags    *Flags       // nil means DefaultFlags
	PageSize int          // 0 means pager.DefaultPageSize
	Locale   language.Tag // language.Und means ordering.DefaultLocale
	Hooks    Hooks
	Logger   *slog.Logger // nil discards
}

// Table is one view over a record set.
type Table struct {
	reg     *column.Registry
	coll    *ordering.Collator
	filters *filter.Store
	search  *search.Store
	sorter  *ordering.Selector
	pages   *pager.State

	raw       []record.Record
	displayed []record.Record

	flags  Flags
	hooks  Hooks
	logger *slog.Logger
}

// New validates the columns and records and returns a table showing page 1
// of the unrefined record set. The records are copied; later changes to the
// caller's maps are not seen by the table.
func New(columns []column.Column, records []record.Record, cfg Config) (*Table, error) {
	reg, err := column.NewRegistry(columns)
	if err != nil {
		return nil, &ConfigError{Op: "columns", Err: err}
	}

	size := cfg.PageSize
	if size == 0 {
		size = pager.DefaultPageSize
	}
	pages, err := pager.NewState(size)
	if err != nil {
		return nil, &ConfigError{Op: "page size", Err: err}
	}

	raw, err := record.Ingest(reg, records)
	if err != nil {
		return nil, &ConfigError{Op: "records", Err: err}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	flags := DefaultFlags()
	if cfg.Flags != nil {
		flags = *cfg.Flags
	}

	coll := ordering.NewCollator(cfg.Locale)
	t := &Table{
		reg:     reg,
		coll:    coll,
		filters: filter.NewStore(reg, coll),
		search:  search.NewStore(reg),
		sorter:  ordering.NewSelector(reg),
		pages:   pages,
		raw:     raw,
		flags:   flags,
		hooks:   cfg.Hooks,
		logger:  logger,
	}
	t.filters.Refresh(t.raw)
	t.recompute()
	return t, nil
}

// recompute rederives the displayed rows from the raw set and returns to
// page 1. The raw slice is never reordered; each pass builds new slices
// sharing the read-only records.
func (t *Table) recompute() {
	start := time.Now()

	rows := t.search.Apply(t.raw)
	rows = t.filters.Apply(rows)
	t.sorter.Apply(rows, t.coll)

	t.displayed = rows
	t.pages.Reset()

	t.logger.Debug("view recomputed",
		"raw", len(t.raw),
		"displayed", len(t.displayed),
		"duration", time.Since(start),
	)
}

// SetSearchTerm replaces the search term of a searchable column.
// An empty term removes the constraint.
func (t *Table) SetSearchTerm(columnID, term string) error {
	if err := t.search.Set(columnID, term); err != nil {
		return &MutationError{Op: "set search term", Column: columnID, Err: err}
	}
	t.recompute()
	return nil
}

// SetFilterValue replaces the filter value of a filterable column.
// A nil or empty-string value unsets the filter.
func (t *Table) SetFilterValue(columnID string, value any) error {
	if err := t.filters.Set(columnID, value); err != nil {
		return &MutationError{Op: "set filter", Column: columnID, Err: err}
	}
	t.recompute()
	return nil
}

// ToggleSort advances the sort cycle of an orderable column.
func (t *Table) ToggleSort(columnID string) error {
	if err := t.sorter.Toggle(columnID); err != nil {
		return &MutationError{Op: "toggle sort", Column: columnID, Err: err}
	}
	t.recompute()
	return nil
}

// SetPage moves to page n, clamped into [1, max(1, LastPage)].
func (t *Table) SetPage(n int) {
	t.pages.SetPage(n, len(t.displayed))
}

// SetPageSize changes the page size. The current page is kept when it
// still exists and clamped to the new last page otherwise.
func (t *Table) SetPageSize(n int) error {
	if err := t.pages.SetSize(n, len(t.displayed)); err != nil {
		return &MutationError{Op: "set page size", Err: err}
	}
	return nil
}

// ReplaceRecords swaps the raw record set, refreshes the filter candidates
// and rederives the view. Refinements are kept. Invalid records return a
// *ConfigError and leave the previous set in place.
func (t *Table) ReplaceRecords(records []record.Record) error {
	raw, err := record.Ingest(t.reg, records)
	if err != nil {
		return &ConfigError{Op: "records", Err: err}
	}
	t.raw = raw
	t.filters.Refresh(t.raw)
	t.recompute()
	return nil
}

// ClearRefinements removes every search term, filter and the sort key.
func (t *Table) ClearRefinements() {
	t.search.Clear()
	t.filters.Clear()
	t.sorter.Clear()
	t.recompute()
}

// OnAdd notifies the add hook.
func (t *Table) OnAdd() {
	if t.hooks.OnAdd != nil {
		t.hooks.OnAdd()
	}
}

// OnEdit notifies the edit hook with the displayed row at index.
func (t *Table) OnEdit(index int) error {
	return t.notifyRow("edit", index, t.hooks.OnEdit)
}

// OnDelete notifies the delete hook with the displayed row at index.
func (t *Table) OnDelete(index int) error {
	return t.notifyRow("delete", index, t.hooks.OnDelete)
}

func (t *Table) notifyRow(op string, index int, hook func(int, record.Record)) error {
	r, err := t.Row(index)
	if err != nil {
		return &MutationError{Op: op, Err: err}
	}
	if hook != nil {
		hook(index, r)
	}
	return nil
}

// Row returns a copy of the displayed record at index.
func (t *Table) Row(index int) (record.Record, error) {
	if index < 0 || index >= len(t.displayed) {
		return nil, ErrRowOutOfRange
	}
	return t.displayed[index].Clone(), nil
}

// CurrentPageRecords returns the records of the current page.
// The records are shared with the table and must not be modified.
func (t *Table) CurrentPageRecords() []record.Record {
	first, last := t.PageBounds()
	return slices.Clone(t.displayed[first:last])
}

// Displayed returns every displayed record, in display order.
// The records are shared with the table and must not be modified.
func (t *Table) Displayed() []record.Record {
	return slices.Clone(t.displayed)
}

// TotalRowCount returns the number of displayed records.
func (t *Table) TotalRowCount() int {
	return len(t.displayed)
}

// RawRowCount returns the number of records before refinement.
func (t *Table) RawRowCount() int {
	return len(t.raw)
}

// PageWindow returns the page numbers to offer as buttons.
func (t *Table) PageWindow() []int {
	return t.pages.Window(len(t.displayed))
}

// PageBounds returns the index range of the current page within Displayed.
func (t *Table) PageBounds() (first, last int) {
	return t.pages.Bounds(len(t.displayed))
}

// CurrentPage returns the current page, always ≥ 1.
func (t *Table) CurrentPage() int {
	return t.pages.Current()
}

// PageSize returns the page size.
func (t *Table) PageSize() int {
	return t.pages.Size()
}

// LastPage returns the number of pages; 0 when nothing is displayed.
func (t *Table) LastPage() int {
	return pager.LastPage(t.pages.Size(), len(t.displayed))
}

// FilterCandidates returns the distinct raw values of a filterable column.
func (t *Table) FilterCandidates(columnID string) ([]any, error) {
	vals, err := t.filters.Candidates(columnID)
	if err != nil {
		return nil, &MutationError{Op: "filter candidates", Column: columnID, Err: err}
	}
	return vals, nil
}

// FilterValue returns the filter value of a column and whether it is set.
func (t *Table) FilterValue(columnID string) (any, bool) {
	return t.filters.Value(columnID)
}

// FilterColumns returns the ids of the columns that have a filter.
func (t *Table) FilterColumns() []string {
	return t.filters.Columns()
}

// SearchTerm returns the search term of a column.
func (t *Table) SearchTerm(columnID string) string {
	return t.search.Term(columnID)
}

// SearchColumns returns the ids of the columns that have a search term.
func (t *Table) SearchColumns() []string {
	return t.search.Columns()
}

// SortState returns the active sort key, or nil when unsorted.
func (t *Table) SortState() *ordering.State {
	st, ok := t.sorter.State()
	if !ok {
		return nil
	}
	return &st
}

// SortIndicator returns the sort arrow state of a column.
func (t *Table) SortIndicator(columnID string) ordering.Indicator {
	return t.sorter.Indicator(columnID)
}

// Columns returns every column, visible or not, in declaration order.
func (t *Table) Columns() []column.Column {
	return t.reg.All()
}

// Flags returns the presentation flags.
func (t *Table) Flags() Flags {
	return t.flags
}
