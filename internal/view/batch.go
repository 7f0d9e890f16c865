package view

import (
	"github.com/JonMunkholm/deeptable/internal/pager"
	"github.com/JonMunkholm/deeptable/internal/record"
)

// Batch collects mutations that are applied with a single recomputation.
// It is only valid inside the function passed to Table.Batch.
type Batch struct {
	t     *Table
	dirty bool

	raw      []record.Record
	replaced bool

	size int // 0 when unchanged
	page int // 0 when unchanged
}

// Batch runs fn and rederives the view once afterwards. When fn returns an
// error every refinement it made is rolled back and the view is left as it
// was; the error is returned unchanged.
//
// Page moves are applied after the recomputation, so a SetPage following a
// refinement in the same batch lands on the requested page. A refinement
// made after a SetPage cancels it, exactly as it would outside a batch.
func (t *Table) Batch(fn func(b *Batch) error) error {
	searchSnap := t.search.Snapshot()
	filterSnap := t.filters.Snapshot()
	sortSnap := t.SortState()

	b := &Batch{t: t}
	if err := fn(b); err != nil {
		t.search.Restore(searchSnap)
		t.filters.Restore(filterSnap)
		t.sorter.Restore(sortSnap)
		t.logger.Debug("view batch rolled back", "error", err)
		return err
	}

	if b.replaced {
		t.raw = b.raw
		t.filters.Refresh(t.raw)
	}
	if b.dirty {
		t.recompute()
	}
	if b.size != 0 {
		// Validated when queued.
		_ = t.pages.SetSize(b.size, len(t.displayed))
	}
	if b.page != 0 {
		t.pages.SetPage(b.page, len(t.displayed))
	}
	return nil
}

func (b *Batch) refined() {
	b.dirty = true
	b.page = 0
}

// SetSearchTerm queues a search term change.
func (b *Batch) SetSearchTerm(columnID, term string) error {
	if err := b.t.search.Set(columnID, term); err != nil {
		return &MutationError{Op: "set search term", Column: columnID, Err: err}
	}
	b.refined()
	return nil
}

// SetFilterValue queues a filter change.
func (b *Batch) SetFilterValue(columnID string, value any) error {
	if err := b.t.filters.Set(columnID, value); err != nil {
		return &MutationError{Op: "set filter", Column: columnID, Err: err}
	}
	b.refined()
	return nil
}

// ToggleSort queues a sort cycle step.
func (b *Batch) ToggleSort(columnID string) error {
	if err := b.t.sorter.Toggle(columnID); err != nil {
		return &MutationError{Op: "toggle sort", Column: columnID, Err: err}
	}
	b.refined()
	return nil
}

// ClearRefinements queues removal of every search term, filter and the
// sort key.
func (b *Batch) ClearRefinements() {
	b.t.search.Clear()
	b.t.filters.Clear()
	b.t.sorter.Clear()
	b.refined()
}

// ReplaceRecords queues a new raw record set. The records are validated
// immediately.
func (b *Batch) ReplaceRecords(records []record.Record) error {
	raw, err := record.Ingest(b.t.reg, records)
	if err != nil {
		return &ConfigError{Op: "records", Err: err}
	}
	b.raw = raw
	b.replaced = true
	b.refined()
	return nil
}

// SetPageSize queues a page size change.
func (b *Batch) SetPageSize(n int) error {
	if !pager.ValidSize(n) {
		return &MutationError{Op: "set page size", Err: pager.ErrInvalidPageSize}
	}
	b.size = n
	return nil
}

// SetPage queues a page move.
func (b *Batch) SetPage(n int) {
	b.page = max(n, 1)
}
