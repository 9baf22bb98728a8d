package pricing

import (
	"context"
	"database/sql"
	"fmt"

	"preventa/internal/domain"
	"preventa/internal/errors"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) FindActive(ctx context.Context, productID, clientTypeID int64, method domain.PaymentMethod) (*domain.PriceEntry, error) {
	query := `
		SELECT pe.id, pe.product_id, pe.client_type_id, pe.payment_method, pe.unit_price,
		       pe.tier1_min_qty, pe.tier1_discount_pct,
		       pe.tier2_min_qty, pe.tier2_discount_pct,
		       pe.tier3_min_qty, pe.tier3_discount_pct,
		       pe.is_active, pe.created_at
		FROM price_entries pe
		JOIN products p ON p.id = pe.product_id AND p.is_active = 1
		WHERE pe.product_id = ?
		  AND pe.client_type_id = ?
		  AND pe.payment_method = ?
		  AND pe.is_active = 1
	`

	var e domain.PriceEntry
	err := r.db.QueryRowContext(ctx, query, productID, clientTypeID, string(method)).Scan(
		&e.ID, &e.ProductID, &e.ClientTypeID, &e.PaymentMethod, &e.UnitPrice,
		&e.Tiers[0].MinQuantity, &e.Tiers[0].DiscountPct,
		&e.Tiers[1].MinQuantity, &e.Tiers[1].DiscountPct,
		&e.Tiers[2].MinQuantity, &e.Tiers[2].DiscountPct,
		&e.IsActive, &e.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf(
			"no price defined for product %d, client type %d, payment method %s",
			productID, clientTypeID, method,
		))
	}
	if err != nil {
		return nil, fmt.Errorf("querying price entry: %w", err)
	}

	return &e, nil
}
