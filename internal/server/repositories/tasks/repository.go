package tasks

import (
	"context"

	"github.com/dstepanenko/tasktrack/internal/server/models"
)

// StatusFilter narrows List results by completion state.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterCompleted StatusFilter = "completed"
)

// Repository persists tasks. Every lookup is conjoined on
// (task id, owner id); a task id alone is never sufficient to reach a row.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID string, filter StatusFilter) ([]*models.Task, error)
	Get(ctx context.Context, ownerID string, taskID int64) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, ownerID string, taskID int64) (bool, error)
}
