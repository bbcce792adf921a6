package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/dstepanenko/tasktrack/internal/common"
	"github.com/dstepanenko/tasktrack/internal/dbx"
	convrepo "github.com/dstepanenko/tasktrack/internal/server/repositories/conversations"
	"github.com/dstepanenko/tasktrack/internal/server/repositories/repomanager"
	tasksrepo "github.com/dstepanenko/tasktrack/internal/server/repositories/tasks"
	usersrepo "github.com/dstepanenko/tasktrack/internal/server/repositories/users"

	"github.com/dstepanenko/tasktrack/internal/server/models"
)

// In-memory repository fakes. They ignore the DBTX they are bound to, which
// lets service tests drive transactional code paths with a sqlmock *sql.DB
// that only has to expect Begin/Commit.

type fakeUsersRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User

	createErr error
	getErr    error
	updateErr error

	updatedHash string
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorConflict
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	f.updatedHash = hash
	return nil
}

type fakeTasksRepo struct {
	nextID int64
	items  map[int64]*models.Task

	err error
}

func newFakeTasksRepo() *fakeTasksRepo {
	return &fakeTasksRepo{items: make(map[int64]*models.Task)}
}

func (f *fakeTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	now := time.Now()
	task.ID = f.nextID
	task.CreatedAt, task.UpdatedAt = now, now
	stored := *task
	f.items[task.ID] = &stored
	return task, nil
}

func (f *fakeTasksRepo) ListByOwner(ctx context.Context, ownerID string, filter tasksrepo.StatusFilter) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []*models.Task
	for _, item := range f.items {
		if item.UserID != ownerID {
			continue
		}
		switch filter {
		case tasksrepo.FilterPending:
			if item.Completed {
				continue
			}
		case tasksrepo.FilterCompleted:
			if !item.Completed {
				continue
			}
		}
		copied := *item
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if filter == tasksrepo.FilterCompleted {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeTasksRepo) Get(ctx context.Context, ownerID string, taskID int64) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[taskID]
	if !ok || item.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[task.ID]
	if !ok || item.UserID != task.UserID {
		return nil, common.ErrorNotFound
	}
	task.CreatedAt = item.CreatedAt
	task.UpdatedAt = item.UpdatedAt.Add(time.Millisecond)
	stored := *task
	f.items[task.ID] = &stored
	return task, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, ownerID string, taskID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	item, ok := f.items[taskID]
	if !ok || item.UserID != ownerID {
		return false, nil
	}
	delete(f.items, taskID)
	return true, nil
}

type fakeConvsRepo struct {
	nextConvID int64
	nextMsgID  int64
	convs      map[int64]*models.Conversation
	messages   []*models.Message

	err error
}

func newFakeConvsRepo() *fakeConvsRepo {
	return &fakeConvsRepo{convs: make(map[int64]*models.Conversation)}
}

func (f *fakeConvsRepo) Create(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextConvID++
	now := time.Now()
	conv.ID = f.nextConvID
	conv.CreatedAt, conv.UpdatedAt = now, now
	stored := *conv
	f.convs[conv.ID] = &stored
	return conv, nil
}

func (f *fakeConvsRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []*models.Conversation
	for _, c := range f.convs {
		if c.UserID == ownerID {
			copied := *c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result, nil
}

func (f *fakeConvsRepo) Get(ctx context.Context, ownerID string, convID int64) (*models.Conversation, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.convs[convID]
	if !ok || c.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeConvsRepo) Touch(ctx context.Context, ownerID string, convID int64) error {
	c, ok := f.convs[convID]
	if !ok || c.UserID != ownerID {
		return common.ErrorNotFound
	}
	c.UpdatedAt = c.UpdatedAt.Add(time.Millisecond)
	return nil
}

func (f *fakeConvsRepo) AppendMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.convs[msg.ConversationID]
	if !ok || c.UserID != msg.UserID {
		return nil, common.ErrorNotFound
	}
	f.nextMsgID++
	msg.ID = f.nextMsgID
	msg.CreatedAt = time.Now()
	stored := *msg
	f.messages = append(f.messages, &stored)
	return msg, nil
}

func (f *fakeConvsRepo) ListMessages(ctx context.Context, ownerID string, convID int64, limit int) ([]*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []*models.Message
	for _, m := range f.messages {
		if m.ConversationID == convID && m.UserID == ownerID {
			copied := *m
			result = append(result, &copied)
		}
	}
	if len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

type fakeRepoManager struct {
	users *fakeUsersRepo
	tasks *fakeTasksRepo
	convs *fakeConvsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users: newFakeUsersRepo(),
		tasks: newFakeTasksRepo(),
		convs: newFakeConvsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.users }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository      { return m.tasks }
func (m *fakeRepoManager) Conversations(db dbx.DBTX) convrepo.Repository {
	return m.convs
}

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)
