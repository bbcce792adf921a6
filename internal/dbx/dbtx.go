// Package dbx holds the small database seam shared by all repositories:
// the DBTX interface, which both *sql.DB and *sql.Tx satisfy, and a
// transaction helper for multi-statement service operations.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql a repository needs. Passing a *sql.Tx
// runs the repository inside an open transaction; passing a *sql.DB runs it
// in auto-commit mode.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back when it returns an error or panics; a panic is
// rethrown after the rollback.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if _, err := repos.Tasks(tx).Get(ctx, ownerID, id); err != nil {
//	        return err
//	    }
//	    return repos.Tasks(tx).Update(ctx, task)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
