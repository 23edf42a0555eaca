package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/yourorg/librarylend/internal/domain"
)

// PostgresLibrarianRepository implements domain.LibrarianRepository using PostgreSQL
type PostgresLibrarianRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresLibrarianRepository creates a new librarian repository
func NewPostgresLibrarianRepository(db *sqlx.DB, logger *slog.Logger) *PostgresLibrarianRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLibrarianRepository{db: db, logger: logger}
}

// Create inserts a new librarian account
func (r *PostgresLibrarianRepository) Create(ctx context.Context, librarian *domain.Librarian) error {
	query := `
		INSERT INTO librarians (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, librarian.Name, librarian.Email, librarian.PasswordHash).
		Scan(&librarian.ID, &librarian.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert librarian: %w", err)
	}
	return nil
}

// GetByID retrieves a librarian by id
func (r *PostgresLibrarianRepository) GetByID(ctx context.Context, id int64) (*domain.Librarian, error) {
	librarian := &domain.Librarian{}
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM librarians
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, librarian, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("librarian not found")
		}
		return nil, fmt.Errorf("failed to get librarian: %w", err)
	}
	return librarian, nil
}

// GetByEmail retrieves a librarian by email
func (r *PostgresLibrarianRepository) GetByEmail(ctx context.Context, email string) (*domain.Librarian, error) {
	librarian := &domain.Librarian{}
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM librarians
		WHERE email = $1
	`
	err := r.db.GetContext(ctx, librarian, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("librarian not found")
		}
		return nil, fmt.Errorf("failed to get librarian by email: %w", err)
	}
	return librarian, nil
}
