// Package services contains server-side business logic. This file implements
// UserService, which handles registration, credential verification, and
// issuing/refreshing JWT pairs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dstepanenko/tasktrack/internal/common"
	"github.com/dstepanenko/tasktrack/internal/server/auth"
	"github.com/dstepanenko/tasktrack/internal/server/config"
	"github.com/dstepanenko/tasktrack/internal/server/models"
	"github.com/dstepanenko/tasktrack/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Seams for exercising failure paths in tests.
var (
	hashPassword = auth.HashPassword
	issueToken   = auth.IssueToken
)

// NormalizeEmail lowercases and trims an email address. All storage and
// lookups use the normalized form, which is what makes email uniqueness
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const nameMaxLength = 100

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint token pairs
// - Refresh: mint a new pair from a valid refresh token
// - ChangePassword: rotate a user's credential
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	passwordMinLength            int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		passwordMinLength:            cfg.PasswordMinLength,
	}
}

// Register creates a new user. A duplicate email yields common.ErrorConflict
// and never alters the existing record.
func (s *UserService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", common.ErrorValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > nameMaxLength {
		return nil, fmt.Errorf("%w: name must be 1-%d characters", common.ErrorValidation, nameMaxLength)
	}
	if err := auth.ValidatePassword(password, s.passwordMinLength); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	// The unique index on email is the source of truth for conflicts; the
	// repository maps the violation to common.ErrorConflict.
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the email/password pair and, on success, returns a new
// TokenPair. An unknown email and a wrong password are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(user.ID)
}

// Refresh validates a refresh token and returns a fresh TokenPair. Tokens
// are stateless, so the old pair simply ages out at its natural expiry.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.VerifyToken(refreshToken, auth.TokenKindRefresh, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	// A still-valid token may reference a user removed since issuance.
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, claims.Subject); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownSubject
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return s.generateTokenPair(claims.Subject)
}

// ChangePassword verifies the current password and replaces the stored hash
// with a hash of the new one. The operation is owner-scoped: the principal
// must match the account being changed.
func (s *UserService) ChangePassword(ctx context.Context, principal *models.User, userID, current, next string) error {
	if err := Authorize(principal, userID); err != nil {
		return err
	}
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if !auth.VerifyPassword(current, user.PasswordHash) {
		return common.ErrorUnauthorized
	}
	if err := auth.ValidatePassword(next, s.passwordMinLength); err != nil {
		return err
	}

	hash, err := hashPassword(next)
	if err != nil {
		return fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}
	if err := repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

func (s *UserService) generateTokenPair(userID string) (*TokenPair, error) {
	access, err := issueToken(userID, auth.TokenKindAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: issue access token: %w", common.ErrorInternal, err)
	}
	refresh, err := issueToken(userID, auth.TokenKindRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: issue refresh token: %w", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
