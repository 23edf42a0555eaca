package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/yourorg/librarylend/internal/domain"
)

var borrowingSortColumns = map[string]bool{
	"id":          true,
	"borrow_date": true,
	"return_date": true,
}

// PostgresBorrowingRepository implements domain.BorrowingRepository using PostgreSQL.
// Borrow and Return take a row lock on the book so the check-then-act
// sequence cannot interleave across concurrent transactions.
type PostgresBorrowingRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresBorrowingRepository creates a new borrowing repository
func NewPostgresBorrowingRepository(db *sqlx.DB, logger *slog.Logger) *PostgresBorrowingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBorrowingRepository{db: db, logger: logger}
}

// Borrow opens a loan for the book inside one transaction.
// The book row is locked before the open-loan check, so two concurrent
// borrow attempts on the same book serialize and the second one fails.
func (r *PostgresBorrowingRepository) Borrow(ctx context.Context, bookID, borrowerID int64) (*domain.Borrowing, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin borrow transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	book := &domain.Book{}
	err = tx.GetContext(ctx, book, `
		SELECT id, isbn, title, author, borrowed, created_at
		FROM books
		WHERE id = $1
		FOR UPDATE
	`, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceBook, bookID)
		}
		return nil, fmt.Errorf("failed to lock book: %w", err)
	}

	var open bool
	err = tx.GetContext(ctx, &open, `
		SELECT EXISTS (SELECT 1 FROM borrowings WHERE book_id = $1 AND return_date IS NULL)
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open borrowings: %w", err)
	}
	if open {
		return nil, domain.ErrAlreadyBorrowed
	}

	if _, err = tx.ExecContext(ctx, `UPDATE books SET borrowed = TRUE WHERE id = $1`, bookID); err != nil {
		return nil, fmt.Errorf("failed to mark book borrowed: %w", err)
	}

	borrowing := &domain.Borrowing{
		BookID:     bookID,
		BorrowerID: borrowerID,
		BorrowDate: time.Now().UTC(),
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO borrowings (book_id, borrower_id, borrow_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`, borrowing.BookID, borrowing.BorrowerID, borrowing.BorrowDate).Scan(&borrowing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert borrowing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit borrow transaction: %w", err)
	}

	r.logger.Debug("borrowing created",
		slog.Int64("borrowing_id", borrowing.ID),
		slog.Int64("book_id", bookID),
		slog.Int64("borrower_id", borrowerID),
	)
	return borrowing, nil
}

// Return closes a loan inside one transaction. A loan that already carries a
// return date, or whose book is already available, is rejected as a
// duplicate return.
func (r *PostgresBorrowingRepository) Return(ctx context.Context, borrowingID int64) (*domain.Borrowing, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin return transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	borrowing := &domain.Borrowing{}
	err = tx.GetContext(ctx, borrowing, `
		SELECT id, book_id, borrower_id, borrow_date, return_date
		FROM borrowings
		WHERE id = $1
		FOR UPDATE
	`, borrowingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceBorrowing, borrowingID)
		}
		return nil, fmt.Errorf("failed to lock borrowing: %w", err)
	}

	var bookBorrowed bool
	err = tx.GetContext(ctx, &bookBorrowed, `
		SELECT borrowed FROM books WHERE id = $1 FOR UPDATE
	`, borrowing.BookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceBook, borrowing.BookID)
		}
		return nil, fmt.Errorf("failed to lock book: %w", err)
	}

	// The loan's own return date is authoritative; the flag check catches a
	// loan that was closed through another path.
	if borrowing.ReturnDate != nil || !bookBorrowed {
		return nil, domain.ErrAlreadyReturned
	}

	if _, err = tx.ExecContext(ctx, `UPDATE books SET borrowed = FALSE WHERE id = $1`, borrowing.BookID); err != nil {
		return nil, fmt.Errorf("failed to mark book available: %w", err)
	}

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE borrowings SET return_date = $1 WHERE id = $2`, now, borrowing.ID); err != nil {
		return nil, fmt.Errorf("failed to set return date: %w", err)
	}
	borrowing.ReturnDate = &now

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit return transaction: %w", err)
	}

	r.logger.Debug("borrowing closed", slog.Int64("borrowing_id", borrowing.ID))
	return borrowing, nil
}

// GetByID retrieves a borrowing by id
func (r *PostgresBorrowingRepository) GetByID(ctx context.Context, id int64) (*domain.Borrowing, error) {
	borrowing := &domain.Borrowing{}
	query := `
		SELECT id, book_id, borrower_id, borrow_date, return_date
		FROM borrowings
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, borrowing, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceBorrowing, id)
		}
		return nil, fmt.Errorf("failed to get borrowing: %w", err)
	}
	return borrowing, nil
}

// FindLatestByBorrowerAndBook returns the most recent loan for the pair
func (r *PostgresBorrowingRepository) FindLatestByBorrowerAndBook(ctx context.Context, borrowerID, bookID int64) (*domain.Borrowing, error) {
	borrowing := &domain.Borrowing{}
	query := `
		SELECT id, book_id, borrower_id, borrow_date, return_date
		FROM borrowings
		WHERE borrower_id = $1 AND book_id = $2
		ORDER BY id DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, borrowing, query, borrowerID, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceBorrowing, bookID)
		}
		return nil, fmt.Errorf("failed to get latest borrowing: %w", err)
	}
	return borrowing, nil
}

// ListByBorrower returns one page of a borrower's loans, open and closed
func (r *PostgresBorrowingRepository) ListByBorrower(ctx context.Context, borrowerID int64, page domain.PageRequest) (*domain.Page[*domain.Borrowing], error) {
	ds := goqu.Dialect(dialectPostgres).
		From("borrowings").
		Select("id", "book_id", "borrower_id", "borrow_date", "return_date").
		Where(goqu.Ex{"borrower_id": borrowerID})

	order := goqu.I(sortColumn(page.SortBy, borrowingSortColumns)).Asc()
	if page.Descending() {
		order = goqu.I(sortColumn(page.SortBy, borrowingSortColumns)).Desc()
	}

	query, args, err := ds.
		Order(order, goqu.I("id").Desc()).
		Limit(uint(page.Limit())).
		Offset(uint(page.Offset())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build borrowings query: %w", err)
	}

	borrowings := []*domain.Borrowing{}
	if err := r.db.SelectContext(ctx, &borrowings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list borrowings: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM borrowings WHERE borrower_id = $1`, borrowerID); err != nil {
		return nil, fmt.Errorf("failed to count borrowings: %w", err)
	}

	return domain.NewPage(borrowings, page, total), nil
}

// ListOpen returns every loan without a return date
func (r *PostgresBorrowingRepository) ListOpen(ctx context.Context) ([]*domain.Borrowing, error) {
	borrowings := []*domain.Borrowing{}
	query := `
		SELECT id, book_id, borrower_id, borrow_date, return_date
		FROM borrowings
		WHERE return_date IS NULL
		ORDER BY borrow_date
	`
	if err := r.db.SelectContext(ctx, &borrowings, query); err != nil {
		return nil, fmt.Errorf("failed to list open borrowings: %w", err)
	}
	return borrowings, nil
}
