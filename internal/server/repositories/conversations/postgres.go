// Package conversations provides a PostgreSQL-backed repository for chat
// conversations and messages.
package conversations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dstepanenko/tasktrack/internal/common"
	"github.com/dstepanenko/tasktrack/internal/dbx"
	"github.com/dstepanenko/tasktrack/internal/server/models"
)

// PostgresRepository implements conversation storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new conversation for its owner.
func (r *PostgresRepository) Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	query := `
		INSERT INTO conversations (user_id)
		VALUES ($1)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, conv.UserID).
		Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return conv, nil
}

// ListByOwner returns the owner's conversations, most recently active first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Conversation, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select conversations: %w", err)
	}
	defer rows.Close()

	var result []*models.Conversation
	for rows.Next() {
		var item models.Conversation
		if err := rows.Scan(&item.ID, &item.UserID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns the conversation identified by (convID, ownerID), or
// common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, ownerID string, convID int64) (*models.Conversation, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2
	`
	conv := &models.Conversation{}
	err := r.db.QueryRowContext(ctx, query, convID, ownerID).
		Scan(&conv.ID, &conv.UserID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return conv, nil
}

// Touch refreshes the conversation's updated_at so listing reflects recent
// activity. Returns common.ErrorNotFound when no owned row matches.
func (r *PostgresRepository) Touch(ctx context.Context, ownerID string, convID int64) error {
	query := `
		UPDATE conversations SET updated_at = now()
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, convID, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// AppendMessage inserts a message. The insert is conjoined on the owning
// conversation so a message can never land in another tenant's conversation:
// the sub-select matches zero rows on an ownership mismatch and the insert
// affects nothing, which surfaces as common.ErrorNotFound.
func (r *PostgresRepository) AppendMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (conversation_id, user_id, role, content)
		SELECT c.id, c.user_id, $3, $4
		FROM conversations c
		WHERE c.id = $1 AND c.user_id = $2
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		msg.ConversationID, msg.UserID, string(msg.Role), msg.Content).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

// ListMessages returns up to limit most recent messages of an owned
// conversation in chronological order (newest last).
func (r *PostgresRepository) ListMessages(ctx context.Context, ownerID string, convID int64, limit int) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, user_id, role, content, created_at
		FROM (
			SELECT id, conversation_id, user_id, role, content, created_at
			FROM messages
			WHERE conversation_id = $1 AND user_id = $2
			ORDER BY id DESC
			LIMIT $3
		) recent
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, convID, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		var item models.Message
		var role string
		if err := rows.Scan(
			&item.ID, &item.ConversationID, &item.UserID, &role, &item.Content, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.Role = models.MessageRole(role)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
