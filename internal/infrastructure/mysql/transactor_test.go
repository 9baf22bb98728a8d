package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preventa/internal/infrastructure/mysql"
	"preventa/internal/testutil"
)

func TestTransactor_CommitAndRollback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	tr := mysql.NewTransactor(db, 5*time.Second)
	ctx := context.Background()

	err := tr.WithinTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO client_types (name) VALUES ('committed')`)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tr.WithinTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO client_types (name) VALUES ('rolled-back')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM client_types WHERE name IN ('committed', 'rolled-back')`).Scan(&count))
	assert.Equal(t, 1, count)
}
