package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dstepanenko/tasktrack/internal/common"
	"github.com/dstepanenko/tasktrack/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func taskRows(tasks ...*models.Task) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"})
	for _, task := range tasks {
		rows.AddRow(task.ID, task.UserID, task.Title, task.Description, task.Completed, task.CreatedAt, task.UpdatedAt)
	}
	return rows
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+tasks\s*\(user_id,\s*title,\s*description,\s*completed\).*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("alice", "buy milk", "2 liters", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	got, err := repo.Create(context.Background(), &models.Task{UserID: "alice", Title: "buy milk", Description: "2 liters"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 7 || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestListByOwner_All(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("alice").
		WillReturnRows(taskRows(
			&models.Task{ID: 2, UserID: "alice", Title: "newer", CreatedAt: now, UpdatedAt: now},
			&models.Task{ID: 1, UserID: "alice", Title: "older", CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
		))

	got, err := repo.ListByOwner(context.Background(), "alice", FilterAll)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestListByOwner_Pending(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)WHERE\s+user_id\s*=\s*\$1\s+AND\s+completed\s*=\s*false\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("alice").
		WillReturnRows(taskRows())

	got, err := repo.ListByOwner(context.Background(), "alice", FilterPending)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestListByOwner_Completed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)WHERE\s+user_id\s*=\s*\$1\s+AND\s+completed\s*=\s*true\s+ORDER\s+BY\s+updated_at\s+DESC`).
		WithArgs("alice").
		WillReturnRows(taskRows(
			&models.Task{ID: 3, UserID: "alice", Title: "done", Completed: true, CreatedAt: now, UpdatedAt: now},
		))

	got, err := repo.ListByOwner(context.Background(), "alice", FilterCompleted)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 1 || !got[0].Completed {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestGet_ScopedToOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+id,\s*user_id,.*FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs(int64(7), "alice").
		WillReturnRows(taskRows(&models.Task{ID: 7, UserID: "alice", Title: "buy milk", CreatedAt: now, UpdatedAt: now}))

	got, err := repo.Get(context.Background(), "alice", 7)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ID != 7 || got.UserID != "alice" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM tasks`).
		WithArgs(int64(7), "bob").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Get(context.Background(), "bob", 7); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+tasks\s+SET\s+title\s*=\s*\$1,\s*description\s*=\s*\$2,\s*completed\s*=\s*\$3,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$4\s+AND\s+user_id\s*=\s*\$5\s+RETURNING\s+updated_at`

	updated := time.Now()
	mock.ExpectQuery(q).
		WithArgs("new title", "new desc", true, int64(7), "alice").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	task := &models.Task{ID: 7, UserID: "alice", Title: "new title", Description: "new desc", Completed: true}
	got, err := repo.Update(context.Background(), task)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Fatalf("updated_at not taken from the store: %+v", got)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+tasks`).
		WithArgs("t", "", false, int64(404), "alice").
		WillReturnError(sql.ErrNoRows)

	task := &models.Task{ID: 404, UserID: "alice", Title: "t"}
	if _, err := repo.Update(context.Background(), task); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)DELETE\s+FROM\s+tasks\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`

	mock.ExpectExec(q).
		WithArgs(int64(7), "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(context.Background(), "alice", 7)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if !deleted {
		t.Fatal("expected deleted=true")
	}
}

func TestDelete_NoMatch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+tasks`).
		WithArgs(int64(7), "bob").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "bob", 7)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if deleted {
		t.Fatal("expected deleted=false for a non-matching row")
	}
}
