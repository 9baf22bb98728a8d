package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "preventa/internal/errors"
)

// OrderState is shared by orders and evaluations. An evaluation decision
// projects onto it through Decision.State.
type OrderState string

const (
	OrderPendingApproval OrderState = "pending_approval"
	OrderApproved        OrderState = "approved"
	OrderRejected        OrderState = "rejected"
	OrderCancelled       OrderState = "cancelled"
)

func (s OrderState) IsTerminal() bool {
	return s == OrderApproved || s == OrderRejected || s == OrderCancelled
}

type SaleChannel string

const (
	ChannelExternal SaleChannel = "external"
	ChannelInternal SaleChannel = "internal"
)

func (c SaleChannel) Valid() bool {
	return c == ChannelExternal || c == ChannelInternal
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

type OrderTotals struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	Total         decimal.Decimal
}

// Consistent checks total == subtotal - discount_total.
func (t OrderTotals) Consistent() bool {
	return t.Total.Equal(t.Subtotal.Sub(t.DiscountTotal))
}

// OrderItem prices are captured at creation and never re-derived.
type OrderItem struct {
	ID             int64
	OrderID        int64
	ProductID      int64
	ClientTypeID   int64
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountPct    decimal.Decimal
	DiscountAmount decimal.Decimal
	Subtotal       decimal.Decimal
	Total          decimal.Decimal
	TierLevel      int
}

type Order struct {
	ID            int64
	Number        string
	VendorID      int64
	ClientID      int64
	PaymentMethod PaymentMethod
	SaleChannel   SaleChannel
	Coordinates   *Coordinates
	Observations  string
	Totals        OrderTotals
	State         OrderState
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (o Order) IsPending() bool {
	return o.State == OrderPendingApproval
}

// Apply moves a pending order to the state a decision projects to.
// Escalation keeps the order pending.
func (o *Order) Apply(d Decision) error {
	if !o.IsPending() {
		return apperrors.NewAlreadyEvaluatedError(fmt.Sprintf("order %d is already %s", o.ID, o.State))
	}
	o.State = d.State()
	return nil
}

// FormatOrderNumber renders PREFIX-YYYYMMDD-NNNN.
func FormatOrderNumber(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}
