package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/librarylend/internal/domain"
	"github.com/yourorg/librarylend/internal/security/auth"
)

const tokenLifetime = 15 * time.Minute

// AuthService handles librarian account operations
type AuthService struct {
	librarianRepo domain.LibrarianRepository
	tokens        *auth.TokenManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	librarianRepo domain.LibrarianRepository,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		librarianRepo: librarianRepo,
		tokens:        tokens,
		logger:        logger,
	}
}

// RegisterResult represents registration response
type RegisterResult struct {
	LibrarianID int64  `json:"librarianId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Token       string `json:"token"`
}

// LoginResult represents login response
type LoginResult struct {
	LibrarianID int64  `json:"librarianId"`
	Email       string `json:"email"`
	Token       string `json:"token"`
	ExpiresIn   int    `json:"expiresIn"` // seconds
	TokenType   string `json:"tokenType"`
}

// Register creates a new librarian account
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*RegisterResult, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email, and password are required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	if existing, err := s.librarianRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register librarian")
	}

	librarian := &domain.Librarian{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.librarianRepo.Create(ctx, librarian); err != nil {
		s.logger.Error("failed to create librarian", slog.String("error", err.Error()))
		return nil, errors.New("failed to register librarian")
	}

	token, err := s.generateToken(librarian)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		LibrarianID: librarian.ID,
		Name:        librarian.Name,
		Email:       librarian.Email,
		Token:       token,
	}, nil
}

// Login authenticates a librarian and returns a JWT token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	librarian, err := s.librarianRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Info("login attempt with unknown email", slog.String("email", email))
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(librarian.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, errors.New("invalid credentials")
	}

	token, err := s.generateToken(librarian)
	if err != nil {
		return nil, err
	}

	s.logger.Info("librarian logged in",
		slog.Int64("librarian_id", librarian.ID),
		slog.String("email", librarian.Email),
	)

	return &LoginResult{
		LibrarianID: librarian.ID,
		Email:       librarian.Email,
		Token:       token,
		ExpiresIn:   int(tokenLifetime.Seconds()),
		TokenType:   "Bearer",
	}, nil
}

func (s *AuthService) generateToken(librarian *domain.Librarian) (string, error) {
	token, err := s.tokens.GenerateToken(strconv.FormatInt(librarian.ID, 10), librarian.Email, tokenLifetime)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return "", errors.New("failed to generate token")
	}
	return token, nil
}
