package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MySQLSequenceRepository hands out per-day order sequence values. The
// counter row stays locked until the caller's transaction ends, so numbers
// are gap free for committed orders.
type MySQLSequenceRepository struct{}

func NewMySQLSequenceRepository() *MySQLSequenceRepository {
	return &MySQLSequenceRepository{}
}

func (r *MySQLSequenceRepository) Next(ctx context.Context, tx *sql.Tx, day time.Time) (int64, error) {
	query := `
		INSERT INTO order_sequences (day, last_value) VALUES (?, LAST_INSERT_ID(1))
		ON DUPLICATE KEY UPDATE last_value = LAST_INSERT_ID(last_value + 1)
	`

	result, err := tx.ExecContext(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("advancing order sequence: %w", err)
	}

	next, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading order sequence: %w", err)
	}

	return next, nil
}
