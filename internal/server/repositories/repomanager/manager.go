package repomanager

import (
	"context"
	"database/sql"

	"github.com/dstepanenko/tasktrack/internal/dbx"
	"github.com/dstepanenko/tasktrack/internal/server/repositories/conversations"
	"github.com/dstepanenko/tasktrack/internal/server/repositories/tasks"
	"github.com/dstepanenko/tasktrack/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX and exposes a schema
// migration hook. Handing out repositories per call lets a service use the
// same repository code against *sql.DB or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Conversations(db dbx.DBTX) conversations.Repository
}
