package domain

import (
	"context"
	"time"
)

// Librarian represents a staff account allowed to mutate library records.
type Librarian struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// LibrarianRepository defines data access for staff accounts
type LibrarianRepository interface {
	Create(ctx context.Context, librarian *Librarian) error
	GetByID(ctx context.Context, id int64) (*Librarian, error)
	GetByEmail(ctx context.Context, email string) (*Librarian, error)
}
