package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type TxFunc func(ctx context.Context, tx *sql.Tx) error

// Transactor runs a function inside a single database transaction with a
// bounded lifetime. The transaction commits only if fn returns nil.
type Transactor struct {
	db        *sql.DB
	timeout   time.Duration
	isolation sql.IsolationLevel
}

func NewTransactor(db *sql.DB, timeout time.Duration) *Transactor {
	return &Transactor{
		db:        db,
		timeout:   timeout,
		isolation: sql.LevelRepeatableRead,
	}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: t.isolation})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// no-op after a successful commit
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return TranslateError(err)
	}

	if err := tx.Commit(); err != nil {
		return TranslateError(fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}
