package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderCreated   EventType = "order.created"
	EventOrderApproved  EventType = "order.approved"
	EventOrderRejected  EventType = "order.rejected"
	EventOrderEscalated EventType = "order.escalated"
)

// OrderEvent is published after the transaction that produced it commits.
type OrderEvent struct {
	Type        EventType       `json:"type"`
	OrderID     int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	VendorID    int64           `json:"vendorId"`
	ClientID    int64           `json:"clientId"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason,omitempty"`
	Actor       Identity        `json:"actor"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

func DecisionEventType(d Decision) EventType {
	switch d {
	case DecisionApproved:
		return EventOrderApproved
	case DecisionRejected:
		return EventOrderRejected
	default:
		return EventOrderEscalated
	}
}
