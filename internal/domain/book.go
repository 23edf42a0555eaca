package domain

import (
	"context"
	"time"
)

// Book represents a single physical copy in the library catalog.
// Copies sharing an ISBN must carry the same title and author.
type Book struct {
	ID        int64     `db:"id" json:"id"`
	ISBN      string    `db:"isbn" json:"isbn"`
	Title     string    `db:"title" json:"title"`
	Author    string    `db:"author" json:"author"`
	Borrowed  bool      `db:"borrowed" json:"borrowed"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// BookRepository defines data access for books
type BookRepository interface {
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id int64) (*Book, error)
	FindByISBN(ctx context.Context, isbn string) ([]*Book, error)
	List(ctx context.Context, page PageRequest) (*Page[*Book], error)
	ListAvailable(ctx context.Context, page PageRequest) (*Page[*Book], error)
}
