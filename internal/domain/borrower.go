package domain

import (
	"context"
	"time"
)

// Borrower represents a registered library member.
// Email addresses are unique across all borrowers.
type Borrower struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// BorrowerRepository defines data access for borrowers
type BorrowerRepository interface {
	Create(ctx context.Context, borrower *Borrower) error
	GetByID(ctx context.Context, id int64) (*Borrower, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page PageRequest) (*Page[*Borrower], error)
}
