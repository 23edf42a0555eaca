package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration

	"github.com/yourorg/librarylend/internal/domain"
)

const dialectPostgres = "postgres"

// bookSortColumns lists the columns a caller may sort books by.
// Anything else falls back to id.
var bookSortColumns = map[string]bool{
	"id":     true,
	"isbn":   true,
	"title":  true,
	"author": true,
}

// PostgresBookRepository implements domain.BookRepository using PostgreSQL
type PostgresBookRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresBookRepository creates a new book repository
func NewPostgresBookRepository(db *sqlx.DB, logger *slog.Logger) *PostgresBookRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBookRepository{db: db, logger: logger}
}

// Create inserts a new book and writes the assigned id and timestamp back
func (r *PostgresBookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (isbn, title, author, borrowed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, book.ISBN, book.Title, book.Author, book.Borrowed).
		Scan(&book.ID, &book.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

// GetByID retrieves a book by id
func (r *PostgresBookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	book := &domain.Book{}
	query := `
		SELECT id, isbn, title, author, borrowed, created_at
		FROM books
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, book, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(domain.ResourceBook, id)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// FindByISBN returns every copy registered under an ISBN
func (r *PostgresBookRepository) FindByISBN(ctx context.Context, isbn string) ([]*domain.Book, error) {
	books := []*domain.Book{}
	query := `
		SELECT id, isbn, title, author, borrowed, created_at
		FROM books
		WHERE isbn = $1
		ORDER BY id
	`
	if err := r.db.SelectContext(ctx, &books, query, isbn); err != nil {
		return nil, fmt.Errorf("failed to find books by isbn: %w", err)
	}
	return books, nil
}

// List returns one page of books sorted by the requested column
func (r *PostgresBookRepository) List(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Book], error) {
	return r.listWhere(ctx, page, nil)
}

// ListAvailable returns one page of books not currently on loan
func (r *PostgresBookRepository) ListAvailable(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Book], error) {
	return r.listWhere(ctx, page, goqu.Ex{"borrowed": false})
}

func (r *PostgresBookRepository) listWhere(
	ctx context.Context, page domain.PageRequest, where goqu.Ex,
) (*domain.Page[*domain.Book], error) {
	ds := goqu.Dialect(dialectPostgres).
		From("books").
		Select("id", "isbn", "title", "author", "borrowed", "created_at")
	countDS := goqu.Dialect(dialectPostgres).From("books").Select(goqu.COUNT("*"))
	if where != nil {
		ds = ds.Where(where)
		countDS = countDS.Where(where)
	}

	order := goqu.I(sortColumn(page.SortBy, bookSortColumns)).Asc()
	if page.Descending() {
		order = goqu.I(sortColumn(page.SortBy, bookSortColumns)).Desc()
	}

	query, args, err := ds.
		Order(order, goqu.I("id").Asc()).
		Limit(uint(page.Limit())).
		Offset(uint(page.Offset())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build books query: %w", err)
	}

	books := []*domain.Book{}
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	countQuery, countArgs, err := countDS.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build books count query: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	return domain.NewPage(books, page, total), nil
}

// sortColumn validates a requested sort column against a safelist,
// falling back to id for anything unrecognized.
func sortColumn(requested string, allowed map[string]bool) string {
	if allowed[requested] {
		return requested
	}
	return "id"
}
