package pager

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestLastPage(t *testing.T) {
	tests := []struct {
		size, total, want int
	}{
		{5, 0, 0},
		{5, 1, 1},
		{5, 5, 1},
		{5, 6, 2},
		{5, 12, 3},
		{25, 10, 1},
		{10, 100, 10},
	}

	for _, tt := range tests {
		if got := LastPage(tt.size, tt.total); got != tt.want {
			t.Errorf("LastPage(%d, %d) = %d, want %d", tt.size, tt.total, got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name                  string
		page, size, total     int
		wantFirst, wantLast   int
	}{
		{"first page", 1, 5, 12, 0, 5},
		{"last partial page", 3, 5, 12, 10, 12},
		{"page beyond end", 9, 5, 12, 12, 12},
		{"zero rows", 1, 5, 0, 0, 0},
		{"size larger than rows", 1, 25, 3, 0, 3},
		{"page zero", 0, 5, 12, 0, 5},
		{"negative page", -4, 5, 12, 0, 5},
		{"huge page", math.MaxInt / 13, 25, 12, 12, 12},
		{"max page", math.MaxInt, 5, 12, 12, 12},
		{"huge size", 2, math.MaxInt, 12, 0, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := Bounds(tt.page, tt.size, tt.total)
			if first != tt.wantFirst || last != tt.wantLast {
				t.Errorf("Bounds(%d, %d, %d) = [%d, %d), want [%d, %d)",
					tt.page, tt.size, tt.total, first, last, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestBounds_NeverOutOfRange(t *testing.T) {
	for _, size := range PageSizes {
		for total := 0; total <= 60; total++ {
			for page := -1; page <= LastPage(size, total)+2; page++ {
				first, last := Bounds(page, size, total)
				if first < 0 || last > total || first > last {
					t.Fatalf("Bounds(%d, %d, %d) = [%d, %d)", page, size, total, first, last)
				}
			}
		}
		for _, page := range []int{math.MaxInt / 13, math.MaxInt / 7, math.MaxInt} {
			first, last := Bounds(page, size, 12)
			if first != 12 || last != 12 {
				t.Fatalf("Bounds(%d, %d, 12) = [%d, %d), want [12, 12)", page, size, first, last)
			}
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name          string
		current, last int
		want          []int
	}{
		{"no pages", 1, 0, []int{1}},
		{"few pages", 2, 3, []int{1, 2, 3}},
		{"exactly five", 5, 5, []int{1, 2, 3, 4, 5}},
		{"head", 1, 10, []int{1, 2, 3, 4, 5}},
		{"head second", 2, 10, []int{1, 2, 3, 4, 5}},
		{"centered", 3, 10, []int{1, 2, 3, 4, 5}},
		{"centered middle", 6, 10, []int{4, 5, 6, 7, 8}},
		{"centered edge", 8, 10, []int{6, 7, 8, 9, 10}},
		{"tail", 9, 10, []int{6, 7, 8, 9, 10}},
		{"tail last", 10, 10, []int{6, 7, 8, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Window(tt.current, tt.last); !slices.Equal(got, tt.want) {
				t.Errorf("Window(%d, %d) = %v, want %v", tt.current, tt.last, got, tt.want)
			}
		})
	}
}

func TestState_TwelveRowsPageSizeFive(t *testing.T) {
	s, err := NewState(5)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}

	s.SetPage(2, 12)
	if got := s.Window(12); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Window() = %v, want [1 2 3]", got)
	}
}

func TestState_SetPageClamps(t *testing.T) {
	s, _ := NewState(5)

	s.SetPage(99, 12)
	if s.Current() != 3 {
		t.Errorf("SetPage(99) current = %d, want 3", s.Current())
	}
	s.SetPage(-1, 12)
	if s.Current() != 1 {
		t.Errorf("SetPage(-1) current = %d, want 1", s.Current())
	}
	s.SetPage(4, 0)
	if s.Current() != 1 {
		t.Errorf("SetPage on empty set current = %d, want 1", s.Current())
	}
}

func TestState_SetSizePreservesOrClamps(t *testing.T) {
	s, _ := NewState(5)
	s.SetPage(3, 30) // 6 pages of 5

	if err := s.SetSize(10, 30); err != nil {
		t.Fatalf("SetSize() error = %v", err)
	}
	if s.Current() != 3 {
		t.Errorf("current after SetSize(10) = %d, want 3 (preserved)", s.Current())
	}

	if err := s.SetSize(25, 30); err != nil {
		t.Fatalf("SetSize() error = %v", err)
	}
	if s.Current() != 2 {
		t.Errorf("current after SetSize(25) = %d, want 2 (clamped)", s.Current())
	}

	if err := s.SetSize(5, 0); err != nil {
		t.Fatalf("SetSize() error = %v", err)
	}
	if s.Current() != 1 {
		t.Errorf("current on empty set = %d, want 1", s.Current())
	}
}

func TestState_InvalidSize(t *testing.T) {
	if _, err := NewState(7); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("NewState(7) error = %v, want ErrInvalidPageSize", err)
	}

	s, _ := NewState(10)
	s.SetPage(2, 30)
	if err := s.SetSize(50, 30); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("SetSize(50) error = %v, want ErrInvalidPageSize", err)
	}
	if s.Size() != 10 || s.Current() != 2 {
		t.Errorf("rejected SetSize changed state: size=%d current=%d", s.Size(), s.Current())
	}
}

func TestState_Reset(t *testing.T) {
	s, _ := NewState(5)
	s.SetPage(3, 20)
	s.Reset()
	if s.Current() != 1 {
		t.Errorf("Reset() current = %d, want 1", s.Current())
	}
}
