package repository

import (
	"context"
	"database/sql"
	"fmt"

	"preventa/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error) {
	query := `
		INSERT INTO order_items (order_id, product_id, client_type_id, quantity, unit_price,
		                         discount_pct, discount_amount, subtotal, total, tier_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		item.OrderID, item.ProductID, item.ClientTypeID, item.Quantity, item.UnitPrice,
		item.DiscountPct, item.DiscountAmount, item.Subtotal, item.Total, item.TierLevel,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return lastInsertID, nil
}

// FindByOrder returns items in insertion order, which is submission order.
func (r *MySQLOrderItemRepository) FindByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, client_type_id, quantity, unit_price,
		       discount_pct, discount_amount, subtotal, total, tier_level
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ClientTypeID, &it.Quantity, &it.UnitPrice,
			&it.DiscountPct, &it.DiscountAmount, &it.Subtotal, &it.Total, &it.TierLevel,
		); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}
