package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/librarylend/internal/domain"
	"github.com/yourorg/librarylend/internal/security/auth"
)

type memLibrarianRepo struct {
	nextID  int64
	byID    map[int64]*domain.Librarian
	byEmail map[string]*domain.Librarian
}

func newMemLibrarianRepo() *memLibrarianRepo {
	return &memLibrarianRepo{nextID: 1, byID: map[int64]*domain.Librarian{}, byEmail: map[string]*domain.Librarian{}}
}

func (m *memLibrarianRepo) Create(_ context.Context, l *domain.Librarian) error {
	l.ID = m.nextID
	l.CreatedAt = time.Now()
	m.nextID++
	m.byID[l.ID] = l
	m.byEmail[l.Email] = l
	return nil
}

func (m *memLibrarianRepo) GetByID(_ context.Context, id int64) (*domain.Librarian, error) {
	if l, ok := m.byID[id]; ok {
		return l, nil
	}
	return nil, errors.New("not found")
}

func (m *memLibrarianRepo) GetByEmail(_ context.Context, email string) (*domain.Librarian, error) {
	if l, ok := m.byEmail[email]; ok {
		return l, nil
	}
	return nil, errors.New("not found")
}

func TestLibrarianRegisterAndLogin(t *testing.T) {
	repo := newMemLibrarianRepo()
	s := NewAuthService(repo, auth.NewTokenManager("secret", "librarylend"), nil)
	ctx := context.Background()

	// Register
	r, err := s.Register(ctx, "Alice", "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if r.LibrarianID == 0 || r.Token == "" {
		t.Fatalf("expected librarian id and token")
	}

	// Duplicate email
	if _, err := s.Register(ctx, "Alice Two", "alice@example.com", "Password123"); err == nil {
		t.Fatalf("expected duplicate email error")
	}

	// Short password
	if _, err := s.Register(ctx, "Bob", "bob@example.com", "short"); err == nil {
		t.Fatalf("expected short password error")
	}

	// Login ok
	lr, err := s.Login(ctx, "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" || lr.TokenType != "Bearer" {
		t.Fatalf("expected bearer token on login")
	}

	// Login wrong password
	if _, err := s.Login(ctx, "alice@example.com", "Wrong"); err == nil {
		t.Fatalf("expected invalid credentials error")
	}

	// Login unknown email
	if _, err := s.Login(ctx, "nobody@example.com", "Password123"); err == nil {
		t.Fatalf("expected invalid credentials error")
	}
}

func TestLibrarianTokenRoundTrip(t *testing.T) {
	repo := newMemLibrarianRepo()
	tm := auth.NewTokenManager("secret", "librarylend")
	s := NewAuthService(repo, tm, nil)

	r, err := s.Register(context.Background(), "Alice", "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	claims, err := tm.ValidateToken(r.Token)
	if err != nil {
		t.Fatalf("validate token failed: %v", err)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("unexpected email in claims: %s", claims.Email)
	}

	// A token signed with a different secret must be rejected
	other := auth.NewTokenManager("other-secret", "librarylend")
	if _, err := other.ValidateToken(r.Token); err == nil {
		t.Fatalf("expected token validation to fail with wrong secret")
	}
}
