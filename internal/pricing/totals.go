package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"preventa/internal/domain"
	apperrors "preventa/internal/errors"
)

// LineInput is one resolved line. UnitPrice is the price before discount.
type LineInput struct {
	ProductID       int64
	ClientTypeID    int64
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPct     decimal.Decimal
	DiscountPerUnit decimal.Decimal
	TierLevel       int
}

func LineFromQuote(q domain.PriceQuote) LineInput {
	return LineInput{
		ProductID:       q.ProductID,
		ClientTypeID:    q.ClientTypeID,
		Quantity:        q.Quantity,
		UnitPrice:       q.UnitPrice,
		DiscountPct:     q.DiscountPct,
		DiscountPerUnit: q.DiscountPerUnit,
		TierLevel:       q.TierLevel,
	}
}

// ComputeTotals prices every line in submission order and sums them. The
// returned items carry the captured line amounts.
func ComputeTotals(lines []LineInput) (domain.OrderTotals, []domain.OrderItem, error) {
	if len(lines) == 0 {
		return domain.OrderTotals{}, nil, apperrors.NewValidationError(
			"order must contain at least one item",
			apperrors.ValidationDetail{Field: "items", Message: "order must contain at least one item"},
		)
	}

	totals := domain.OrderTotals{
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
	}
	items := make([]domain.OrderItem, 0, len(lines))

	for i, line := range lines {
		if line.Quantity <= 0 {
			return domain.OrderTotals{}, nil, apperrors.NewValidationError("invalid line quantity", apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be greater than zero",
			})
		}
		if line.UnitPrice.IsNegative() || line.DiscountPerUnit.IsNegative() || line.DiscountPerUnit.GreaterThan(line.UnitPrice) {
			return domain.OrderTotals{}, nil, apperrors.NewValidationError("invalid line price", apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d]", i),
				Message: "unit price and discount must be non-negative and the discount cannot exceed the price",
			})
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal := domain.Round2(line.UnitPrice.Mul(qty))
		discount := domain.Round2(line.DiscountPerUnit.Mul(qty))

		items = append(items, domain.OrderItem{
			ProductID:      line.ProductID,
			ClientTypeID:   line.ClientTypeID,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			DiscountPct:    line.DiscountPct,
			DiscountAmount: discount,
			Subtotal:       subtotal,
			Total:          subtotal.Sub(discount),
			TierLevel:      line.TierLevel,
		})

		totals.Subtotal = totals.Subtotal.Add(subtotal)
		totals.DiscountTotal = totals.DiscountTotal.Add(discount)
	}

	totals.Total = totals.Subtotal.Sub(totals.DiscountTotal)
	if !totals.Consistent() {
		return domain.OrderTotals{}, nil, apperrors.NewInternalError("order totals are inconsistent", nil)
	}

	return totals, items, nil
}
