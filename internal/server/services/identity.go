package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dstepanenko/tasktrack/internal/common"
	"github.com/dstepanenko/tasktrack/internal/server/auth"
	"github.com/dstepanenko/tasktrack/internal/server/config"
	"github.com/dstepanenko/tasktrack/internal/server/models"
	"github.com/dstepanenko/tasktrack/internal/server/repositories/repomanager"
)

// IdentityService resolves a presented bearer token to an authenticated
// principal. It is stateless: each call verifies the token and performs a
// single read against the user store, so it is safe to call once per inbound
// request from any number of goroutines.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
}

// NewIdentityService constructs an IdentityService from server config.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *IdentityService {
	return &IdentityService{db: db, repomanager: m, jwtSecret: []byte(cfg.SecretKey)}
}

// Resolve verifies tokenString as an access token and loads the referenced
// user. Verification failures surface as the token sentinel errors;
// a valid token whose subject no longer exists yields
// common.ErrUnknownSubject.
func (s *IdentityService) Resolve(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := auth.VerifyToken(tokenString, auth.TokenKindAccess, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownSubject
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return user, nil
}
