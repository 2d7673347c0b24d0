package db

import (
	"context"
	"database/sql"
)

// InTx runs fn against a transaction, committing when fn returns nil.
func InTx(ctx context.Context, database *sql.DB, fn func(qry *Queries) error) error {
	sqltx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	err = fn(New(sqltx))
	if err != nil {
		sqltx.Rollback()
		return err
	}
	return sqltx.Commit()
}
