package credit

import (
	"context"
	"database/sql"
	"fmt"

	"preventa/internal/domain"
)

// MySQLHistoryRepository appends to credit_history. There is no update or
// delete path.
type MySQLHistoryRepository struct {
	db *sql.DB
}

func NewMySQLHistoryRepository(db *sql.DB) *MySQLHistoryRepository {
	return &MySQLHistoryRepository{db: db}
}

func (r *MySQLHistoryRepository) Insert(ctx context.Context, tx *sql.Tx, m domain.CreditMovement) (int64, error) {
	query := `
		INSERT INTO credit_history (client_id, kind, amount, previous_limit, new_limit,
		                            previous_used, new_used, reason, reference_id, actor_id, actor_role)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		m.ClientID, string(m.Kind), m.Amount, m.PreviousLimit, m.NewLimit,
		m.PreviousUsed, m.NewUsed, m.Reason, m.ReferenceID, m.Actor.UserID, string(m.Actor.Role),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting credit history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

func (r *MySQLHistoryRepository) ListByClient(ctx context.Context, clientID int64, limit int) ([]domain.CreditMovement, error) {
	query := `
		SELECT id, client_id, kind, amount, previous_limit, new_limit, previous_used, new_used,
		       reason, reference_id, actor_id, actor_role, created_at
		FROM credit_history
		WHERE client_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying credit history: %w", err)
	}
	defer rows.Close()

	movements := []domain.CreditMovement{}
	for rows.Next() {
		var m domain.CreditMovement
		if err := rows.Scan(
			&m.ID, &m.ClientID, &m.Kind, &m.Amount, &m.PreviousLimit, &m.NewLimit,
			&m.PreviousUsed, &m.NewUsed, &m.Reason, &m.ReferenceID,
			&m.Actor.UserID, &m.Actor.Role, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning credit history row: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credit history rows: %w", err)
	}

	return movements, nil
}
