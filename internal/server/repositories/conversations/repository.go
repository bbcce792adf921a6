package conversations

import (
	"context"

	"github.com/dstepanenko/tasktrack/internal/server/models"
)

// Repository persists conversations and their messages. As with tasks,
// every lookup is conjoined on the owner id.
type Repository interface {
	Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Conversation, error)
	Get(ctx context.Context, ownerID string, convID int64) (*models.Conversation, error)
	Touch(ctx context.Context, ownerID string, convID int64) error
	AppendMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, ownerID string, convID int64, limit int) ([]*models.Message, error)
}
