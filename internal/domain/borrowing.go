package domain

import (
	"context"
	"time"
)

// Borrowing is a loan record linking one book copy to one borrower.
// A nil ReturnDate means the loan is still open and the book is out.
type Borrowing struct {
	ID         int64      `db:"id" json:"id"`
	BookID     int64      `db:"book_id" json:"bookId"`
	BorrowerID int64      `db:"borrower_id" json:"borrowerId"`
	BorrowDate time.Time  `db:"borrow_date" json:"borrowDate"`
	ReturnDate *time.Time `db:"return_date" json:"returnDate"`
}

// IsBorrowed reports whether the loan is still open. It is derived from
// ReturnDate and never persisted on its own.
func (b *Borrowing) IsBorrowed() bool {
	return b.ReturnDate == nil
}

// BorrowingRepository defines data access for loan records.
//
// Borrow and Return run the check-then-act sequence of the lending state
// machine inside a single database transaction, so two concurrent calls on
// the same book cannot both succeed.
type BorrowingRepository interface {
	// Borrow locks the book row, verifies no open loan exists for it, flips
	// the book's borrowed flag and inserts a new open borrowing. Returns
	// ErrAlreadyBorrowed when an open loan already exists, or a
	// NotFoundError when the book is missing.
	Borrow(ctx context.Context, bookID, borrowerID int64) (*Borrowing, error)

	// Return locks the borrowing's book row, rejects loans that are already
	// closed with ErrAlreadyReturned, flips the book's borrowed flag back
	// and stamps the return date.
	Return(ctx context.Context, borrowingID int64) (*Borrowing, error)

	GetByID(ctx context.Context, id int64) (*Borrowing, error)
	FindLatestByBorrowerAndBook(ctx context.Context, borrowerID, bookID int64) (*Borrowing, error)
	ListByBorrower(ctx context.Context, borrowerID int64, page PageRequest) (*Page[*Borrowing], error)
	ListOpen(ctx context.Context) ([]*Borrowing, error)
}
