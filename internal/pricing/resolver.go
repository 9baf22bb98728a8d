package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"preventa/internal/domain"
	apperrors "preventa/internal/errors"
)

type Resolver struct {
	repo   Repository
	logger *zap.Logger
}

func NewResolver(repo Repository, logger *zap.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger,
	}
}

// ResolvePrice prices quantity units of a product. A missing price entry is
// reported as NotFoundError; there is no fallback price.
func (r *Resolver) ResolvePrice(
	ctx context.Context,
	productID int64,
	clientTypeID int64,
	method domain.PaymentMethod,
	quantity int,
) (*domain.PriceQuote, error) {
	if err := validateQuoteInput(method, quantity); err != nil {
		return nil, err
	}

	entry, err := r.repo.FindActive(ctx, productID, clientTypeID, method)
	if err != nil {
		return nil, err
	}

	if err := entry.Validate(); err != nil {
		r.logger.Error("misconfigured price entry", zap.Int64("priceEntryId", entry.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("price entry is misconfigured", err)
	}

	quote := entry.Quote(quantity)
	r.logger.Debug("price resolved",
		zap.Int64("productId", productID),
		zap.Int64("clientTypeId", clientTypeID),
		zap.String("paymentMethod", string(method)),
		zap.Int("quantity", quantity),
		zap.Int("tierLevel", quote.TierLevel),
		zap.String("finalUnitPrice", quote.FinalUnitPrice.StringFixed(2)),
	)

	return &quote, nil
}

type Comparison struct {
	Credit     domain.PriceQuote
	Cash       domain.PriceQuote
	Savings    decimal.Decimal
	SavingsPct decimal.Decimal
}

// CompareMethods quotes the same line on credit and in cash. Both prices
// must exist.
func (r *Resolver) CompareMethods(ctx context.Context, productID, clientTypeID int64, quantity int) (*Comparison, error) {
	credit, err := r.ResolvePrice(ctx, productID, clientTypeID, domain.PaymentCredit, quantity)
	if err != nil {
		return nil, err
	}
	cash, err := r.ResolvePrice(ctx, productID, clientTypeID, domain.PaymentCash, quantity)
	if err != nil {
		return nil, err
	}

	creditTotal := credit.Subtotal()
	savings := creditTotal.Sub(cash.Subtotal())
	savingsPct := decimal.Zero
	if creditTotal.IsPositive() {
		savingsPct = domain.Round2(savings.Div(creditTotal).Mul(decimal.NewFromInt(100)))
	}

	return &Comparison{
		Credit:     *credit,
		Cash:       *cash,
		Savings:    savings,
		SavingsPct: savingsPct,
	}, nil
}

func validateQuoteInput(method domain.PaymentMethod, quantity int) error {
	var details []apperrors.ValidationDetail
	if !method.Valid() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: fmt.Sprintf("unknown payment method %q", method),
		})
	}
	if quantity <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be greater than zero",
		})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid price request", details...)
	}
	return nil
}
