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
	"github.com/dstepanenko/tasktrack/internal/server/repositories/tasks"
)

const (
	titleMaxLength       = 200
	descriptionMaxLength = 1000
)

// TaskService implements owner-scoped task CRUD. Every operation takes the
// authenticated principal and the owner scope of the request and funnels
// through Authorize before any repository access; the repositories then
// conjoin each lookup on (task id, owner id) as a second layer, so a task
// belonging to another user is indistinguishable from a missing one.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTaskService constructs a TaskService.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title must not be blank", common.ErrorValidation)
	}
	if len(title) > titleMaxLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", common.ErrorValidation, titleMaxLength)
	}
	return title, nil
}

func validateDescription(description string) error {
	if len(description) > descriptionMaxLength {
		return fmt.Errorf("%w: description must be at most %d characters", common.ErrorValidation, descriptionMaxLength)
	}
	return nil
}

// Create adds a task for ownerID. New tasks always start not completed.
func (s *TaskService) Create(ctx context.Context, principal *models.User, ownerID, title, description string) (*models.Task, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
	}
	created, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return created, nil
}

// List returns a snapshot of the owner's tasks. All and pending are ordered
// newest-created first, completed most-recently-updated first. An unknown
// filter value is a validation error.
func (s *TaskService) List(ctx context.Context, principal *models.User, ownerID string, filter tasks.StatusFilter) ([]*models.Task, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	switch filter {
	case tasks.FilterAll, tasks.FilterPending, tasks.FilterCompleted:
	case "":
		filter = tasks.FilterAll
	default:
		return nil, fmt.Errorf("%w: unknown status filter %q", common.ErrorValidation, filter)
	}

	result, err := s.repomanager.Tasks(s.db).ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return result, nil
}

// Get returns the owner's task or common.ErrorNotFound.
func (s *TaskService) Get(ctx context.Context, principal *models.User, ownerID string, taskID int64) (*models.Task, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	return s.repomanager.Tasks(s.db).Get(ctx, ownerID, taskID)
}

// Update applies a partial update: only non-nil fields change. The
// read-verify-write sequence runs inside one transaction so a concurrent
// delete cannot slip between the lookup and the write.
func (s *TaskService) Update(ctx context.Context, principal *models.User, ownerID string, taskID int64, title, description *string) (*models.Task, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	var updated *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		task, err := repo.Get(ctx, ownerID, taskID)
		if err != nil {
			return err
		}

		if title != nil {
			t, err := validateTitle(*title)
			if err != nil {
				return err
			}
			task.Title = t
		}
		if description != nil {
			if err := validateDescription(*description); err != nil {
				return err
			}
			task.Description = *description
		}

		updated, err = repo.Update(ctx, task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetCompletion sets the completion flag. Repeated calls with the same value
// are idempotent; updated_at still reflects the latest committed write.
func (s *TaskService) SetCompletion(ctx context.Context, principal *models.User, ownerID string, taskID int64, completed bool) (*models.Task, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return nil, err
	}
	var updated *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)
		task, err := repo.Get(ctx, ownerID, taskID)
		if err != nil {
			return err
		}

		task.Completed = completed
		updated, err = repo.Update(ctx, task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the owner's task. It reports true iff a row existed and
// matched the owner; an ownership mismatch reports false, same as absence.
func (s *TaskService) Delete(ctx context.Context, principal *models.User, ownerID string, taskID int64) (bool, error) {
	if err := Authorize(principal, ownerID); err != nil {
		return false, err
	}
	return s.repomanager.Tasks(s.db).Delete(ctx, ownerID, taskID)
}
