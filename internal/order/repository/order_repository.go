package repository

import (
	"context"
	"database/sql"
	"fmt"

	"preventa/internal/domain"
	"preventa/internal/errors"
	"preventa/internal/infrastructure/mysql"
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Insert writes the order header. A taken order number surfaces as a
// ConcurrencyConflictError so the caller can retry with a fresh number.
func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, o *domain.Order) (int64, error) {
	query := `
		INSERT INTO orders (order_number, vendor_id, client_id, payment_method, sale_channel,
		                    latitude, longitude, observations, subtotal, discount_total, total, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var lat, lng sql.NullFloat64
	if o.Coordinates != nil {
		lat = sql.NullFloat64{Float64: o.Coordinates.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: o.Coordinates.Longitude, Valid: true}
	}

	result, err := tx.ExecContext(ctx, query,
		o.Number, o.VendorID, o.ClientID, string(o.PaymentMethod), string(o.SaleChannel),
		lat, lng, nullString(o.Observations),
		o.Totals.Subtotal, o.Totals.DiscountTotal, o.Totals.Total, string(o.State),
	)
	if mysql.IsDuplicateEntry(err) {
		return 0, errors.NewConcurrencyConflictError(fmt.Sprintf("order number %s already taken", o.Number), err)
	}
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

const selectOrder = `
	SELECT id, order_number, vendor_id, client_id, payment_method, sale_channel,
	       latitude, longitude, observations, subtotal, discount_total, total, state,
	       created_at, updated_at
	FROM orders
	WHERE id = ?`

// FindByID returns the order header without items.
func (r *MySQLOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	return scanOrder(ctx, r.db, selectOrder, id)
}

// FindByIDForUpdate locks the order row until tx ends.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
	return scanOrder(ctx, tx, selectOrder+" FOR UPDATE", id)
}

func scanOrder(ctx context.Context, q queryer, query string, id int64) (*domain.Order, error) {
	var (
		o            domain.Order
		lat, lng     sql.NullFloat64
		observations sql.NullString
	)

	err := q.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Number, &o.VendorID, &o.ClientID, &o.PaymentMethod, &o.SaleChannel,
		&lat, &lng, &observations,
		&o.Totals.Subtotal, &o.Totals.DiscountTotal, &o.Totals.Total, &o.State,
		&o.CreatedAt, &o.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	if lat.Valid && lng.Valid {
		o.Coordinates = &domain.Coordinates{Latitude: lat.Float64, Longitude: lng.Float64}
	}
	o.Observations = observations.String

	return &o, nil
}

// ListByClient returns the client's most recent orders, newest first, without items.
func (r *MySQLOrderRepository) ListByClient(ctx context.Context, clientID int64, limit int) ([]domain.Order, error) {
	query := `
		SELECT id, order_number, vendor_id, client_id, payment_method, sale_channel,
		       subtotal, discount_total, total, state, created_at, updated_at
		FROM orders
		WHERE client_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying orders by client: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.Number, &o.VendorID, &o.ClientID, &o.PaymentMethod, &o.SaleChannel,
			&o.Totals.Subtotal, &o.Totals.DiscountTotal, &o.Totals.Total, &o.State,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning client order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client order rows: %w", err)
	}

	return orders, nil
}

// UpdateState only moves a pending order; anything else is a lost race.
func (r *MySQLOrderRepository) UpdateState(ctx context.Context, tx *sql.Tx, id int64, state domain.OrderState) error {
	query := `UPDATE orders SET state = ? WHERE id = ? AND state = ?`

	result, err := tx.ExecContext(ctx, query, string(state), id, string(domain.OrderPendingApproval))
	if err != nil {
		return fmt.Errorf("updating order state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewAlreadyEvaluatedError(fmt.Sprintf("order %d is no longer pending", id))
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
