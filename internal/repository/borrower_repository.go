package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/yourorg/librarylend/internal/domain"
)

var borrowerSortColumns = map[string]bool{
	"id":    true,
	"name":  true,
	"email": true,
}

// PostgresBorrowerRepository implements domain.BorrowerRepository using PostgreSQL
type PostgresBorrowerRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresBorrowerRepository creates a new borrower repository
func NewPostgresBorrowerRepository(db *sqlx.DB, logger *slog.Logger) *PostgresBorrowerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBorrowerRepository{db: db, logger: logger}
}

// Create inserts a new borrower and writes the assigned id and timestamp back
func (r *PostgresBorrowerRepository) Create(ctx context.Context, borrower *domain.Borrower) error {
	query := `
		INSERT INTO borrowers (name, email)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, borrower.Name, borrower.Email).
		Scan(&borrower.ID, &borrower.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert borrower: %w", err)
	}
	return nil
}

// GetByID retrieves a borrower by id
func (r *PostgresBorrowerRepository) GetByID(ctx context.Context, id int64) (*domain.Borrower, error) {
	borrower := &domain.Borrower{}
	query := `
		SELECT id, name, email, created_at
		FROM borrowers
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, borrower, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceBorrower, id)
		}
		return nil, fmt.Errorf("failed to get borrower: %w", err)
	}
	return borrower, nil
}

// ExistsByEmail reports whether a borrower is already registered under an email
func (r *PostgresBorrowerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM borrowers WHERE email = $1)`
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("failed to check borrower email: %w", err)
	}
	return exists, nil
}

// List returns one page of borrowers sorted by the requested column
func (r *PostgresBorrowerRepository) List(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Borrower], error) {
	ds := goqu.Dialect(dialectPostgres).
		From("borrowers").
		Select("id", "name", "email", "created_at")

	order := goqu.I(sortColumn(page.SortBy, borrowerSortColumns)).Asc()
	if page.Descending() {
		order = goqu.I(sortColumn(page.SortBy, borrowerSortColumns)).Desc()
	}

	query, args, err := ds.
		Order(order, goqu.I("id").Asc()).
		Limit(uint(page.Limit())).
		Offset(uint(page.Offset())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build borrowers query: %w", err)
	}

	borrowers := []*domain.Borrower{}
	if err := r.db.SelectContext(ctx, &borrowers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list borrowers: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM borrowers`); err != nil {
		return nil, fmt.Errorf("failed to count borrowers: %w", err)
	}

	return domain.NewPage(borrowers, page, total), nil
}
