package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentCash   PaymentMethod = "cash"
	PaymentYape   PaymentMethod = "yape"
	PaymentPlin   PaymentMethod = "plin"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCredit, PaymentCash, PaymentYape, PaymentPlin:
		return true
	}
	return false
}

// RequiresCredit reports whether approving an order paid this way consumes
// the client's credit line.
func (m PaymentMethod) RequiresCredit() bool {
	return m == PaymentCredit
}

var hundred = decimal.NewFromInt(100)

// Round2 rounds a money amount to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

type VolumeTier struct {
	MinQuantity int
	DiscountPct decimal.Decimal
}

// PriceEntry is the price of a product for a client type and payment method.
// Tiers[0] is tier 1.
type PriceEntry struct {
	ID            int64
	ProductID     int64
	ClientTypeID  int64
	PaymentMethod PaymentMethod
	UnitPrice     decimal.Decimal
	Tiers         [3]VolumeTier
	IsActive      bool
	CreatedAt     time.Time
}

// Validate checks that tiers only ever improve with quantity.
func (p PriceEntry) Validate() error {
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("price entry %d: negative unit price", p.ID)
	}
	prevQty := -1
	prevPct := decimal.Zero
	for i, t := range p.Tiers {
		if t.DiscountPct.IsZero() {
			continue
		}
		if t.DiscountPct.IsNegative() || t.DiscountPct.GreaterThan(hundred) {
			return fmt.Errorf("price entry %d: tier %d discount out of range", p.ID, i+1)
		}
		if t.MinQuantity <= prevQty {
			return fmt.Errorf("price entry %d: tier %d threshold not ascending", p.ID, i+1)
		}
		if t.DiscountPct.LessThan(prevPct) {
			return fmt.Errorf("price entry %d: tier %d discount lower than previous tier", p.ID, i+1)
		}
		prevQty = t.MinQuantity
		prevPct = t.DiscountPct
	}
	return nil
}

// Quote prices quantity units. Tiers are checked from 3 down to 1 and the
// first one whose threshold is met and whose discount is non-zero wins.
func (p PriceEntry) Quote(quantity int) PriceQuote {
	q := PriceQuote{
		ProductID:       p.ProductID,
		ClientTypeID:    p.ClientTypeID,
		PaymentMethod:   p.PaymentMethod,
		Quantity:        quantity,
		UnitPrice:       p.UnitPrice,
		DiscountPct:     decimal.Zero,
		DiscountPerUnit: decimal.Zero,
		FinalUnitPrice:  p.UnitPrice,
	}

	for level := len(p.Tiers); level >= 1; level-- {
		tier := p.Tiers[level-1]
		if quantity >= tier.MinQuantity && tier.DiscountPct.IsPositive() {
			q.TierLevel = level
			q.DiscountPct = tier.DiscountPct
			q.DiscountPerUnit = Round2(p.UnitPrice.Mul(tier.DiscountPct).Div(hundred))
			q.FinalUnitPrice = p.UnitPrice.Sub(q.DiscountPerUnit)
			break
		}
	}

	return q
}

type PriceQuote struct {
	ProductID       int64
	ClientTypeID    int64
	PaymentMethod   PaymentMethod
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPct     decimal.Decimal
	DiscountPerUnit decimal.Decimal
	FinalUnitPrice  decimal.Decimal
	TierLevel       int
}

// Subtotal is the line amount after the volume discount.
func (q PriceQuote) Subtotal() decimal.Decimal {
	return q.FinalUnitPrice.Mul(decimal.NewFromInt(int64(q.Quantity)))
}
