package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/librarylend/internal/domain"
	"github.com/yourorg/librarylend/internal/events"
	"github.com/yourorg/librarylend/internal/observability/metrics"
)

// BorrowingInfo is the caller-facing snapshot of one loan. IsBorrowed is
// derived from ReturnDate when the snapshot is built, never stored.
type BorrowingInfo struct {
	ID         int64            `json:"id"`
	Borrower   *domain.Borrower `json:"borrower"`
	Book       *domain.Book     `json:"bookInfo"`
	BorrowDate time.Time        `json:"borrowDate"`
	ReturnDate *time.Time       `json:"returnDate"`
	IsBorrowed bool             `json:"isBorrowed"`
}

// LendingService owns the borrow/return state machine. A book carries an
// open borrowing if and only if its borrowed flag is true, and at most one
// borrowing per book is open at a time; the transactional repository
// operations keep both invariants.
type LendingService struct {
	borrowingRepo domain.BorrowingRepository
	bookRepo      domain.BookRepository
	borrowerRepo  domain.BorrowerRepository
	hub           *events.Hub
	logger        *slog.Logger
}

// NewLendingService creates a new lending service
func NewLendingService(
	borrowingRepo domain.BorrowingRepository,
	bookRepo domain.BookRepository,
	borrowerRepo domain.BorrowerRepository,
	hub *events.Hub,
	logger *slog.Logger,
) *LendingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LendingService{
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		borrowerRepo:  borrowerRepo,
		hub:           hub,
		logger:        logger,
	}
}

// BorrowBook opens a loan for the book on behalf of the borrower.
// Fails when either record is missing or the book already has an open loan;
// a failed attempt mutates nothing.
func (s *LendingService) BorrowBook(ctx context.Context, bookID, borrowerID int64) (*BorrowingInfo, error) {
	s.logger.Info("borrow attempt",
		slog.Int64("book_id", bookID),
		slog.Int64("borrower_id", borrowerID),
	)

	borrower, err := s.borrowerRepo.GetByID(ctx, borrowerID)
	if err != nil {
		metrics.ObserveLending("borrow", resultLabel(err))
		return nil, err
	}

	borrowing, err := s.borrowingRepo.Borrow(ctx, bookID, borrowerID)
	if err != nil {
		metrics.ObserveLending("borrow", resultLabel(err))
		return nil, err
	}

	book, err := s.bookRepo.GetByID(ctx, borrowing.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load borrowed book: %w", err)
	}

	metrics.ObserveLending("borrow", "success")
	if s.hub != nil {
		s.hub.Publish(events.LendingEvent{
			Kind:        events.KindBorrowed,
			BorrowingID: borrowing.ID,
			BookID:      book.ID,
			BookTitle:   book.Title,
			BorrowerID:  borrower.ID,
			OccurredAt:  borrowing.BorrowDate,
		})
	}

	s.logger.Info("book borrowed",
		slog.Int64("borrowing_id", borrowing.ID),
		slog.Int64("book_id", bookID),
		slog.Int64("borrower_id", borrowerID),
	)
	return s.newBorrowingInfo(borrowing, book, borrower), nil
}

// ReturnBook closes the loan identified by borrowingID. Returning a loan
// that is already closed fails and mutates nothing.
func (s *LendingService) ReturnBook(ctx context.Context, borrowingID int64) (*BorrowingInfo, error) {
	s.logger.Info("return attempt", slog.Int64("borrowing_id", borrowingID))

	borrowing, err := s.borrowingRepo.Return(ctx, borrowingID)
	if err != nil {
		metrics.ObserveLending("return", resultLabel(err))
		return nil, err
	}

	info, err := s.assembleInfo(ctx, borrowing)
	if err != nil {
		return nil, err
	}

	metrics.ObserveLending("return", "success")
	if s.hub != nil {
		s.hub.Publish(events.LendingEvent{
			Kind:        events.KindReturned,
			BorrowingID: borrowing.ID,
			BookID:      info.Book.ID,
			BookTitle:   info.Book.Title,
			BorrowerID:  info.Borrower.ID,
			OccurredAt:  *borrowing.ReturnDate,
		})
	}

	s.logger.Info("book returned", slog.Int64("borrowing_id", borrowingID))
	return info, nil
}

// GetBorrowingInfo returns the most recent loan for the borrower/book pair
func (s *LendingService) GetBorrowingInfo(ctx context.Context, borrowerID, bookID int64) (*BorrowingInfo, error) {
	borrowing, err := s.borrowingRepo.FindLatestByBorrowerAndBook(ctx, borrowerID, bookID)
	if err != nil {
		return nil, err
	}
	return s.assembleInfo(ctx, borrowing)
}

// ListBorrowingsByBorrower returns one page of the borrower's loans, open
// and closed alike.
func (s *LendingService) ListBorrowingsByBorrower(
	ctx context.Context, borrowerID int64, page domain.PageRequest,
) (*domain.Page[*BorrowingInfo], error) {
	borrower, err := s.borrowerRepo.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	borrowings, err := s.borrowingRepo.ListByBorrower(ctx, borrowerID, page)
	if err != nil {
		return nil, err
	}

	// One page references few distinct books; resolve each once.
	books := make(map[int64]*domain.Book)
	for _, b := range borrowings.Content {
		if _, ok := books[b.BookID]; ok {
			continue
		}
		book, err := s.bookRepo.GetByID(ctx, b.BookID)
		if err != nil {
			return nil, fmt.Errorf("failed to load book for borrowing %d: %w", b.ID, err)
		}
		books[b.BookID] = book
	}

	return domain.MapPage(borrowings, func(b *domain.Borrowing) *BorrowingInfo {
		return s.newBorrowingInfo(b, books[b.BookID], borrower)
	}), nil
}

func (s *LendingService) assembleInfo(ctx context.Context, borrowing *domain.Borrowing) (*BorrowingInfo, error) {
	book, err := s.bookRepo.GetByID(ctx, borrowing.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load book for borrowing %d: %w", borrowing.ID, err)
	}
	borrower, err := s.borrowerRepo.GetByID(ctx, borrowing.BorrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load borrower for borrowing %d: %w", borrowing.ID, err)
	}
	return s.newBorrowingInfo(borrowing, book, borrower), nil
}

func (s *LendingService) newBorrowingInfo(
	borrowing *domain.Borrowing, book *domain.Book, borrower *domain.Borrower,
) *BorrowingInfo {
	return &BorrowingInfo{
		ID:         borrowing.ID,
		Borrower:   borrower,
		Book:       book,
		BorrowDate: borrowing.BorrowDate,
		ReturnDate: borrowing.ReturnDate,
		IsBorrowed: borrowing.IsBorrowed(),
	}
}

// resultLabel buckets an error for the lending metrics
func resultLabel(err error) string {
	var notFound *domain.NotFoundError
	var rule *domain.BusinessRuleError
	switch {
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &rule):
		return "rejected"
	default:
		return "error"
	}
}
