package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/librarylend/internal/domain"
	"github.com/yourorg/librarylend/internal/events"
)

type lendingFixture struct {
	catalog    *CatalogService
	lending    *LendingService
	hub        *events.Hub
	book       *domain.Book
	borrower   *domain.Borrower
	borrowings *memBorrowingRepo
}

func newLendingFixture(t *testing.T) *lendingFixture {
	t.Helper()
	books := newMemBookRepo()
	borrowers := newMemBorrowerRepo()
	borrowings := newMemBorrowingRepo(books)
	hub := events.NewHub()

	catalog := NewCatalogService(books, borrowers, nil)
	lending := NewLendingService(borrowings, books, borrowers, hub, nil)

	ctx := context.Background()
	book, err := catalog.RegisterBook(ctx, "978-0134190440", "The Go Programming Language", "Donovan & Kernighan")
	require.NoError(t, err)
	borrower, err := catalog.RegisterBorrower(ctx, "Alice", "alice@example.com")
	require.NoError(t, err)

	return &lendingFixture{
		catalog:    catalog,
		lending:    lending,
		hub:        hub,
		book:       book,
		borrower:   borrower,
		borrowings: borrowings,
	}
}

func TestBorrowBook(t *testing.T) {
	f := newLendingFixture(t)
	ctx := context.Background()

	info, err := f.lending.BorrowBook(ctx, f.book.ID, f.borrower.ID)
	require.NoError(t, err)
	assert.True(t, info.IsBorrowed)
	assert.Nil(t, info.ReturnDate)
	assert.Equal(t, f.borrower.ID, info.Borrower.ID)
	assert.Equal(t, f.book.ID, info.Book.ID)
	assert.True(t, info.Book.Borrowed)
}

func TestBorrowBookAlreadyBorrowed(t *testing.T) {
	f := newLendingFixture(t)
	ctx := context.Background()

	_, err := f.lending.BorrowBook(ctx, f.book.ID, f.borrower.ID)
	require.NoError(t, err)

	second, err := f.catalog.RegisterBorrower(ctx, "Bob", "bob@example.com")
	require.NoError(t, err)

	_, err = f.lending.BorrowBook(ctx, f.book.ID, second.ID)
	require.Error(t, err)
	assert.Equal(t, "library book is already borrowed by someone", err.Error())

	// The failed attempt must not have opened a loan
	open, err := f.borrowings.ListOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestBorrowBookMissingBorrower(t *testing.T) {
	f := newLendingFixture(t)

	_, err := f.lending.BorrowBook(context.Background(), f.book.ID, 999)
	require.Error(t, err)

	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Borrower not found with id: '999'", notFound.Error())
}

func TestBorrowBookMissingBook(t *testing.T) {
	f := newLendingFixture(t)

	_, err := f.lending.BorrowBook(context.Background(), 999, f.borrower.ID)
	require.Error(t, err)

	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Library Book not found with id: '999'", notFound.Error())
}

func TestReturnBook(t *testing.T) {
	f := newLendingFixture(t)
	ctx := context.Background()

	borrowed, err := f.lending.BorrowBook(ctx, f.book.ID, f.borrower.ID)
	require.NoError(t, err)

	returned, err := f.lending.ReturnBook(ctx, borrowed.ID)
	require.NoError(t, err)
	assert.False(t, returned.IsBorrowed)
	require.NotNil(t, returned.ReturnDate)
	assert.False(t, returned.Book.Borrowed)

	// The book can be borrowed again after a return
	again, err := f.lending.BorrowBook(ctx, f.book.ID, f.borrower.ID)
	require.NoError(t, err)
	assert.NotEqual(t, borrowed.ID, again.ID)
}

func TestReturnBookAlreadyReturned(t *testing.T) {
	f := newLendingFixture(t)
	ctx := context.Background()

	borrowed, err := f.lending.BorrowBook(ctx, f.book.ID, f.borrower.ID)
	require.NoError(t, err)

	_, err = f.lending.ReturnBook(ctx, borrowed.ID)
	require.NoError(t, err)

	_, err = f.lending.ReturnBook(ctx, borrowed.ID)
	require.Error(t, err)
	assert.Equal(t, "library book already returned by borrower", err.Error())
}

func TestReturnBookMissingBorrowing(t *testing.T) {
	f := newLendingFixture(t)

	_, err := f.lending.ReturnBook(context.Background(), 999)
	require.Error(t, err)

	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Borrowing not found with id: '999'", notFound.Error())
}

func TestGetBorrowingInfoLatestLoan(t *testing.T) {
	f := newLendingFixture(t)
	ctx := context.Background()

	first, err := f.lending.BorrowBook(ctx, f.book.ID, f.borrower.ID)
	require.NoError(t, err)
	_, err = f.lending.ReturnBook(ctx, first.ID)
	require.NoError(t, err)

	second, err := f.lending.BorrowBook(ctx, f.book.ID, f.borrower.ID)
	require.NoError(t, err)

	info, err := f.lending.GetBorrowingInfo(ctx, f.borrower.ID, f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, info.ID)
	assert.True(t, info.IsBorrowed)
}

func TestListBorrowingsByBorrower(t *testing.T) {
	f := newLendingFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		borrowed, err := f.lending.BorrowBook(ctx, f.book.ID, f.borrower.ID)
		require.NoError(t, err)
		_, err = f.lending.ReturnBook(ctx, borrowed.ID)
		require.NoError(t, err)
	}

	page, err := f.lending.ListBorrowingsByBorrower(ctx, f.borrower.ID, domain.PageRequest{
		PageSize: 10,
		SortBy:   "id",
		SortDir:  domain.SortDesc,
	})
	require.NoError(t, err)
	require.Len(t, page.Content, 3)
	assert.Equal(t, int64(3), page.TotalElements)

	// Newest loan first, all closed
	assert.Greater(t, page.Content[0].ID, page.Content[1].ID)
	for _, info := range page.Content {
		assert.False(t, info.IsBorrowed)
		assert.Equal(t, f.book.Title, info.Book.Title)
	}
}

func TestListBorrowingsByBorrowerMissingBorrower(t *testing.T) {
	f := newLendingFixture(t)

	_, err := f.lending.ListBorrowingsByBorrower(context.Background(), 999, domain.PageRequest{PageSize: 10})
	require.Error(t, err)

	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestLendingEventsPublished(t *testing.T) {
	f := newLendingFixture(t)
	ctx := context.Background()

	ch, cancel := f.hub.Subscribe()
	defer cancel()

	borrowed, err := f.lending.BorrowBook(ctx, f.book.ID, f.borrower.ID)
	require.NoError(t, err)
	_, err = f.lending.ReturnBook(ctx, borrowed.ID)
	require.NoError(t, err)

	first := <-ch
	assert.Equal(t, events.KindBorrowed, first.Kind)
	assert.Equal(t, borrowed.ID, first.BorrowingID)
	assert.Equal(t, f.book.Title, first.BookTitle)

	second := <-ch
	assert.Equal(t, events.KindReturned, second.Kind)
	assert.Equal(t, borrowed.ID, second.BorrowingID)
}
