package service

import (
	"context"
	"sort"
	"time"

	"github.com/yourorg/librarylend/internal/domain"
)

// In-memory repositories backing the service tests. Borrow and Return follow
// the same state machine as the Postgres implementations.

type memBookRepo struct {
	nextID int64
	books  map[int64]*domain.Book
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{nextID: 1, books: map[int64]*domain.Book{}}
}

func (m *memBookRepo) Create(_ context.Context, book *domain.Book) error {
	book.ID = m.nextID
	book.CreatedAt = time.Now()
	m.nextID++
	m.books[book.ID] = book
	return nil
}

func (m *memBookRepo) GetByID(_ context.Context, id int64) (*domain.Book, error) {
	if b, ok := m.books[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, domain.NewNotFoundError(domain.ResourceBook, id)
}

func (m *memBookRepo) FindByISBN(_ context.Context, isbn string) ([]*domain.Book, error) {
	var out []*domain.Book
	for _, b := range m.books {
		if b.ISBN == isbn {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookRepo) List(_ context.Context, page domain.PageRequest) (*domain.Page[*domain.Book], error) {
	return m.paginate(page, func(*domain.Book) bool { return true }), nil
}

func (m *memBookRepo) ListAvailable(_ context.Context, page domain.PageRequest) (*domain.Page[*domain.Book], error) {
	return m.paginate(page, func(b *domain.Book) bool { return !b.Borrowed }), nil
}

func (m *memBookRepo) paginate(page domain.PageRequest, keep func(*domain.Book) bool) *domain.Page[*domain.Book] {
	var all []*domain.Book
	for _, b := range m.books {
		if keep(b) {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if page.Descending() {
			return all[i].ID > all[j].ID
		}
		return all[i].ID < all[j].ID
	})
	return slicePage(all, page)
}

type memBorrowerRepo struct {
	nextID    int64
	borrowers map[int64]*domain.Borrower
}

func newMemBorrowerRepo() *memBorrowerRepo {
	return &memBorrowerRepo{nextID: 1, borrowers: map[int64]*domain.Borrower{}}
}

func (m *memBorrowerRepo) Create(_ context.Context, borrower *domain.Borrower) error {
	borrower.ID = m.nextID
	borrower.CreatedAt = time.Now()
	m.nextID++
	m.borrowers[borrower.ID] = borrower
	return nil
}

func (m *memBorrowerRepo) GetByID(_ context.Context, id int64) (*domain.Borrower, error) {
	if b, ok := m.borrowers[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, domain.NewNotFoundError(domain.ResourceBorrower, id)
}

func (m *memBorrowerRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, b := range m.borrowers {
		if b.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBorrowerRepo) List(_ context.Context, page domain.PageRequest) (*domain.Page[*domain.Borrower], error) {
	var all []*domain.Borrower
	for _, b := range m.borrowers {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return slicePage(all, page), nil
}

type memBorrowingRepo struct {
	nextID     int64
	borrowings map[int64]*domain.Borrowing
	books      *memBookRepo
}

func newMemBorrowingRepo(books *memBookRepo) *memBorrowingRepo {
	return &memBorrowingRepo{nextID: 1, borrowings: map[int64]*domain.Borrowing{}, books: books}
}

func (m *memBorrowingRepo) Borrow(_ context.Context, bookID, borrowerID int64) (*domain.Borrowing, error) {
	book, ok := m.books.books[bookID]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ResourceBook, bookID)
	}
	for _, b := range m.borrowings {
		if b.BookID == bookID && b.ReturnDate == nil {
			return nil, domain.ErrAlreadyBorrowed
		}
	}
	book.Borrowed = true
	borrowing := &domain.Borrowing{
		ID:         m.nextID,
		BookID:     bookID,
		BorrowerID: borrowerID,
		BorrowDate: time.Now().UTC(),
	}
	m.nextID++
	m.borrowings[borrowing.ID] = borrowing
	copied := *borrowing
	return &copied, nil
}

func (m *memBorrowingRepo) Return(_ context.Context, borrowingID int64) (*domain.Borrowing, error) {
	borrowing, ok := m.borrowings[borrowingID]
	if !ok {
		return nil, domain.NewNotFoundError(domain.ResourceBorrowing, borrowingID)
	}
	if borrowing.ReturnDate != nil {
		return nil, domain.ErrAlreadyReturned
	}
	if book, ok := m.books.books[borrowing.BookID]; ok {
		book.Borrowed = false
	}
	now := time.Now().UTC()
	borrowing.ReturnDate = &now
	copied := *borrowing
	return &copied, nil
}

func (m *memBorrowingRepo) GetByID(_ context.Context, id int64) (*domain.Borrowing, error) {
	if b, ok := m.borrowings[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, domain.NewNotFoundError(domain.ResourceBorrowing, id)
}

func (m *memBorrowingRepo) FindLatestByBorrowerAndBook(_ context.Context, borrowerID, bookID int64) (*domain.Borrowing, error) {
	var latest *domain.Borrowing
	for _, b := range m.borrowings {
		if b.BorrowerID != borrowerID || b.BookID != bookID {
			continue
		}
		if latest == nil || b.ID > latest.ID {
			latest = b
		}
	}
	if latest == nil {
		return nil, domain.NewNotFoundError(domain.ResourceBorrowing, bookID)
	}
	copied := *latest
	return &copied, nil
}

func (m *memBorrowingRepo) ListByBorrower(_ context.Context, borrowerID int64, page domain.PageRequest) (*domain.Page[*domain.Borrowing], error) {
	var all []*domain.Borrowing
	for _, b := range m.borrowings {
		if b.BorrowerID == borrowerID {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if page.Descending() {
			return all[i].ID > all[j].ID
		}
		return all[i].ID < all[j].ID
	})
	return slicePage(all, page), nil
}

func (m *memBorrowingRepo) ListOpen(_ context.Context) ([]*domain.Borrowing, error) {
	var out []*domain.Borrowing
	for _, b := range m.borrowings {
		if b.ReturnDate == nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func slicePage[T any](all []T, page domain.PageRequest) *domain.Page[T] {
	total := int64(len(all))
	start := page.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + page.Limit()
	if end > len(all) {
		end = len(all)
	}
	return domain.NewPage(all[start:end], page, total)
}
