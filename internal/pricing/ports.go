package pricing

import (
	"context"

	"preventa/internal/domain"
)

// Repository returns the single active price entry of a (product, client
// type, payment method) triple, or a NotFoundError.
type Repository interface {
	FindActive(ctx context.Context, productID, clientTypeID int64, method domain.PaymentMethod) (*domain.PriceEntry, error)
}
