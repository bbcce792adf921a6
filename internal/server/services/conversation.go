package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dstepanenko/tasktrack/internal/common"
	"github.com/dstepanenko/tasktrack/internal/dbx"
	"github.com/dstepanenko/tasktrack/internal/server/models"
	"github.com/dstepanenko/tasktrack/internal/server/repositories/repomanager"
)

// defaultHistoryLimit is how many messages History returns when the caller
// does not ask for a specific amount.
const defaultHistoryLimit = 20

// ConversationService manages chat conversations and their messages. Like
// TaskService, every operation authorizes the principal against the owner
// scope before touching any state. Durable state lives in the same
// transactional store as tasks; a small in-memory log of recent messages per
// owner serves the read path that does not need full history.
type ConversationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	recent      *HistoryLog
}

// NewConversationService constructs a ConversationService.
func NewConversationService(db *sql.DB, m repomanager.RepositoryManager) *ConversationService {
	return &ConversationService{db: db, repomanager: m, recent: NewHistoryLog()}
}

// Start opens a new conversation owned by ownerID.
func (s *ConversationService) Start(ctx context.Context, principal *models.User, ownerID string) (*models.Conversation, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	conv := &models.Conversation{UserID: ownerID}
	created, err := s.repomanager.Conversations(s.db).Create(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}
	return created, nil
}

// List returns the owner's conversations, most recently active first.
func (s *ConversationService) List(ctx context.Context, principal *models.User, ownerID string) ([]*models.Conversation, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	result, err := s.repomanager.Conversations(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	return result, nil
}

// AppendMessage stores a message in an owned conversation and refreshes the
// conversation's activity timestamp in the same transaction. A conversation
// owned by someone else surfaces as common.ErrorNotFound.
func (s *ConversationService) AppendMessage(ctx context.Context, principal *models.User, ownerID string, convID int64, role models.MessageRole, content string) (*models.Message, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown message role %q", common.ErrorValidation, role)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content must not be blank", common.ErrorValidation)
	}

	msg := &models.Message{
		ConversationID: convID,
		UserID:         ownerID,
		Role:           role,
		Content:        content,
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Conversations(tx)
		if _, err := repo.AppendMessage(ctx, msg); err != nil {
			return err
		}
		return repo.Touch(ctx, ownerID, convID)
	})
	if err != nil {
		return nil, err
	}

	s.recent.Append(ownerID, role, content)

	return msg, nil
}

// History returns up to limit most recent messages of an owned conversation
// in chronological order. limit <= 0 selects the default.
func (s *ConversationService) History(ctx context.Context, principal *models.User, ownerID string, convID int64, limit int) ([]*models.Message, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	repo := s.repomanager.Conversations(s.db)
	if _, err := repo.Get(ctx, ownerID, convID); err != nil {
		return nil, err
	}
	return repo.ListMessages(ctx, ownerID, convID, limit)
}

// Recent returns the owner's cached recent messages without touching the
// store.
func (s *ConversationService) Recent(principal *models.User, ownerID string, limit int) ([]HistoryEntry, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	return s.recent.Recent(ownerID, limit), nil
}

// ClearRecent drops the owner's cached recent messages.
func (s *ConversationService) ClearRecent(principal *models.User, ownerID string) error {
	if err := Authorize(principal, ownerID); err != nil {
		return err
	}
	s.recent.Clear(ownerID)
	return nil
}
