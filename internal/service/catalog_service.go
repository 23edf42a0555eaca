package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourorg/librarylend/internal/domain"
	"github.com/yourorg/librarylend/internal/observability/metrics"
)

// CatalogService registers books and borrowers and serves catalog lookups.
// Registration rules: copies of an ISBN must agree on title and author, and
// borrower emails are unique.
type CatalogService struct {
	bookRepo     domain.BookRepository
	borrowerRepo domain.BorrowerRepository
	logger       *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	bookRepo domain.BookRepository,
	borrowerRepo domain.BorrowerRepository,
	logger *slog.Logger,
) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		bookRepo:     bookRepo,
		borrowerRepo: borrowerRepo,
		logger:       logger,
	}
}

// RegisterBook adds a new copy to the catalog. When the ISBN is already
// known, the incoming title and author must match every existing copy.
func (s *CatalogService) RegisterBook(ctx context.Context, isbn, title, author string) (*domain.Book, error) {
	s.logger.Info("registering book", slog.String("isbn", isbn))

	existing, err := s.bookRepo.FindByISBN(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("failed to look up isbn: %w", err)
	}
	for _, b := range existing {
		if b.Title != title || b.Author != author {
			s.logger.Warn("isbn conflict on registration", slog.String("isbn", isbn))
			metrics.ObserveRegistration("book", "rejected")
			return nil, &domain.InvalidBookError{Reason: "ISBN number must have the same title and author"}
		}
	}

	book := &domain.Book{
		ISBN:     isbn,
		Title:    title,
		Author:   author,
		Borrowed: false,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to register book: %w", err)
	}

	metrics.ObserveRegistration("book", "success")
	s.logger.Info("book registered", slog.Int64("book_id", book.ID), slog.String("isbn", isbn))
	return book, nil
}

// GetBookByID fetches a single book
func (s *CatalogService) GetBookByID(ctx context.Context, bookID int64) (*domain.Book, error) {
	return s.bookRepo.GetByID(ctx, bookID)
}

// ListBooks returns one page of the whole catalog
func (s *CatalogService) ListBooks(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Book], error) {
	return s.bookRepo.List(ctx, page)
}

// ListAvailableBooks returns one page of books not currently on loan
func (s *CatalogService) ListAvailableBooks(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Book], error) {
	return s.bookRepo.ListAvailable(ctx, page)
}

// RegisterBorrower adds a new member. Emails are unique across borrowers.
func (s *CatalogService) RegisterBorrower(ctx context.Context, name, email string) (*domain.Borrower, error) {
	s.logger.Info("registering borrower", slog.String("email", email))

	exists, err := s.borrowerRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check borrower email: %w", err)
	}
	if exists {
		s.logger.Warn("duplicate borrower email", slog.String("email", email))
		metrics.ObserveRegistration("borrower", "rejected")
		return nil, &domain.InvalidBorrowerError{Reason: "Email ID already exists"}
	}

	borrower := &domain.Borrower{
		Name:  name,
		Email: email,
	}
	if err := s.borrowerRepo.Create(ctx, borrower); err != nil {
		return nil, fmt.Errorf("failed to register borrower: %w", err)
	}

	metrics.ObserveRegistration("borrower", "success")
	s.logger.Info("borrower registered", slog.Int64("borrower_id", borrower.ID))
	return borrower, nil
}

// GetBorrowerByID fetches a single borrower
func (s *CatalogService) GetBorrowerByID(ctx context.Context, borrowerID int64) (*domain.Borrower, error) {
	return s.borrowerRepo.GetByID(ctx, borrowerID)
}

// ListBorrowers returns one page of registered members
func (s *CatalogService) ListBorrowers(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Borrower], error) {
	return s.borrowerRepo.List(ctx, page)
}
