package domain

import "testing"

func TestNewPage(t *testing.T) {
	req := PageRequest{PageNo: 0, PageSize: 10, SortBy: "id", SortDir: SortAsc}
	page := NewPage([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, req, 25)

	if page.TotalElements != 25 {
		t.Errorf("expected 25 total elements, got %d", page.TotalElements)
	}
	if page.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.NumberOfElements != 10 {
		t.Errorf("expected 10 elements on page, got %d", page.NumberOfElements)
	}
	if page.Last {
		t.Error("first of three pages must not be last")
	}
}

func TestNewPageLastPartialPage(t *testing.T) {
	req := PageRequest{PageNo: 2, PageSize: 10, SortBy: "id", SortDir: SortAsc}
	page := NewPage([]int{21, 22, 23, 24, 25}, req, 25)

	if !page.Last {
		t.Error("expected last page")
	}
	if page.NumberOfElements != 5 {
		t.Errorf("expected 5 elements on last page, got %d", page.NumberOfElements)
	}
}

func TestNewPageEmpty(t *testing.T) {
	req := PageRequest{PageNo: 0, PageSize: 10, SortBy: "id", SortDir: SortAsc}
	page := NewPage([]int{}, req, 0)

	if page.TotalPages != 0 {
		t.Errorf("expected 0 total pages, got %d", page.TotalPages)
	}
	if !page.Last {
		t.Error("an empty result set is its own last page")
	}
}

func TestPageRequestOffset(t *testing.T) {
	req := PageRequest{PageNo: 3, PageSize: 20}
	if req.Offset() != 60 {
		t.Errorf("expected offset 60, got %d", req.Offset())
	}
	if req.Limit() != 20 {
		t.Errorf("expected limit 20, got %d", req.Limit())
	}
}

func TestMapPage(t *testing.T) {
	req := PageRequest{PageNo: 1, PageSize: 2, SortBy: "id", SortDir: SortDesc}
	page := NewPage([]int{3, 4}, req, 6)

	mapped := MapPage(page, func(n int) int { return n * 10 })
	if mapped.Content[0] != 30 || mapped.Content[1] != 40 {
		t.Errorf("unexpected mapped content: %v", mapped.Content)
	}
	if mapped.TotalElements != page.TotalElements || mapped.Last != page.Last {
		t.Error("mapping must preserve page metadata")
	}
}

func TestBorrowingIsBorrowed(t *testing.T) {
	open := &Borrowing{ID: 1}
	if !open.IsBorrowed() {
		t.Error("loan without return date must be open")
	}

	now := open.BorrowDate
	closed := &Borrowing{ID: 2, ReturnDate: &now}
	if closed.IsBorrowed() {
		t.Error("loan with return date must be closed")
	}
}
