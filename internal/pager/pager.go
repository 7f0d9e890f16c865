// Package pager slices displayed rows into pages and computes the window of
// page buttons shown to the user.
//
// Pages are 1-based. An empty row set has a last page of 0, but the current
// page never drops below 1, so an empty table still shows a single, empty
// page 1.
package pager

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidPageSize is returned for a page size outside PageSizes.
var ErrInvalidPageSize = errors.New("invalid page size")

// PageSizes are the selectable page sizes.
var PageSizes = []int{5, 10, 25}

// DefaultPageSize is the page size of a new view.
const DefaultPageSize = 5

// windowSize is the maximum number of page buttons.
const windowSize = 5

// ValidSize reports whether n is one of PageSizes.
func ValidSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// LastPage returns ceil(total / size); 0 when there are no rows.
func LastPage(size, total int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total-1)/size + 1
}

// Bounds returns the half-open index range [first, last) of a page.
// Both indexes are clamped into [0, total], so the result can always be
// used to slice a sequence of length total.
func Bounds(page, size, total int) (first, last int) {
	if page < 1 {
		page = 1
	}
	if size < 0 {
		size = 0
	}
	if total < 0 {
		total = 0
	}
	// Pages past the end all start at total; clamping first keeps the
	// product below total so it cannot overflow.
	if size > 0 && page-1 > total/size {
		page = total/size + 1
	}
	first = min((page-1)*size, total)
	last = first + min(size, total-first)
	return first, last
}

// Window returns the page numbers to render as buttons.
//
//   - last ≤ 5: every page
//   - current in [3, last-2]: current-2 … current+2
//   - current ≤ 2: 1 … 5
//   - otherwise: last-4 … last
//
// With no pages at all the window is just page 1.
func Window(current, last int) []int {
	switch {
	case last <= 0:
		return []int{1}
	case last <= windowSize:
		return pageRange(1, last)
	case current >= 3 && current <= last-2:
		return pageRange(current-2, current+2)
	case current <= 2:
		return pageRange(1, windowSize)
	default:
		return pageRange(last-windowSize+1, last)
	}
}

func pageRange(start, end int) []int {
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// State is the page size and current page of one view.
type State struct {
	size    int
	current int
}

// NewState returns page 1 with the given size, or an error if the size is
// not selectable.
func NewState(size int) (*State, error) {
	if !ValidSize(size) {
		return nil, fmt.Errorf("%w: %d (allowed: %v)", ErrInvalidPageSize, size, PageSizes)
	}
	return &State{size: size, current: 1}, nil
}

// Size returns the page size.
func (s *State) Size() int { return s.size }

// Current returns the current page, always ≥ 1.
func (s *State) Current() int { return s.current }

// Reset returns to page 1. Called whenever the displayed rows are rederived.
func (s *State) Reset() {
	s.current = 1
}

// SetPage moves to page n, clamped into [1, max(1, last page)].
func (s *State) SetPage(n, total int) {
	s.current = clampPage(n, LastPage(s.size, total))
}

// SetSize changes the page size and re-clamps the current page to the new
// last page without going back to page 1.
func (s *State) SetSize(size, total int) error {
	if !ValidSize(size) {
		return fmt.Errorf("%w: %d (allowed: %v)", ErrInvalidPageSize, size, PageSizes)
	}
	s.size = size
	s.current = clampPage(s.current, LastPage(size, total))
	return nil
}

// Bounds returns the index range of the current page.
func (s *State) Bounds(total int) (first, last int) {
	return Bounds(s.current, s.size, total)
}

// Window returns the page buttons around the current page.
func (s *State) Window(total int) []int {
	return Window(s.current, LastPage(s.size, total))
}

func clampPage(n, last int) int {
	return max(1, min(n, last))
}
