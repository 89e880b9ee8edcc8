// Package services contains server-side business logic. This file implements
// UserService, which handles signup, signin, and signout plus access-token
// issuance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dklimov/taskvault/internal/common"
	"github.com/dklimov/taskvault/internal/server/auth"
	"github.com/dklimov/taskvault/internal/server/config"
	"github.com/dklimov/taskvault/internal/server/models"
	"github.com/dklimov/taskvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	passwordMinLength = 8
	passwordMaxLength = 100
)

// AuthResult bundles the created/authenticated user with a fresh access token.
type AuthResult struct {
	User  *models.User
	Token string
}

// UserService provides authentication-related operations:
// - Register: create users and mint a token
// - Login: verify credentials and mint a token
// - Signout: verify the presented token for diagnostics; no server state changes
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// validateEmail mirrors the signup contract: an '@' with a dot somewhere in
// the domain part. Matching is exact and case-sensitive everywhere else.
func validateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("%w: invalid email format", common.ErrorValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < passwordMinLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, passwordMinLength)
	}
	if len(password) > passwordMaxLength {
		return fmt.Errorf("%w: password must be %d characters or less", common.ErrorValidation, passwordMaxLength)
	}
	return nil
}

// Register creates a new account and returns it with an access token.
// A duplicate email surfaces common.ErrorAlreadyExists; uniqueness is decided
// by the database constraint, so concurrent signups cannot both win.
func (s *UserService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}

	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the email/password pair and returns the user with a fresh
// token. An unknown email and a wrong password are indistinguishable to the
// caller, so account existence cannot be probed.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Signout verifies the presented token and returns its subject. Tokens are
// stateless, so there is nothing to invalidate server-side; the result is
// used for diagnostics only and the transport acknowledges sign-out either
// way.
func (s *UserService) Signout(ctx context.Context, token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

// VerifyToken resolves an access token to the user ID it asserts.
func (s *UserService) VerifyToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}
