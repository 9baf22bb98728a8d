package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type EvaluateRequest struct {
	OrderID         int64  `json:"orderId" validate:"required,gt=0"`
	Decision        string `json:"decision" validate:"required,oneof=approved rejected escalated"`
	RejectionReason string `json:"rejectionReason" validate:"max=500"`
	Observations    string `json:"observations" validate:"max=1000"`
}

type ChecksResponse struct {
	VendorActive        bool `json:"vendorActive"`
	ClientInZone        bool `json:"clientInZone"`
	AmountWithinLimit   bool `json:"amountWithinLimit"`
	ClientNotDelinquent bool `json:"clientNotDelinquent"`
	Passed              int  `json:"passed"`
}

type EvaluationResponse struct {
	TraceID         string         `json:"traceId"`
	OrderID         int64          `json:"orderId"`
	OrderNumber     string         `json:"orderNumber"`
	Decision        string         `json:"decision"`
	OrderState      string         `json:"orderState"`
	Checks          ChecksResponse `json:"checks"`
	Priority        string         `json:"priority"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	EvaluatorID     int64          `json:"evaluatorId"`
	DecidedAt       time.Time      `json:"decidedAt"`
}

type PendingOrderResponse struct {
	OrderID       int64           `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	ClientID      int64           `json:"clientId"`
	ClientName    string          `json:"clientName"`
	VendorID      int64           `json:"vendorId"`
	VendorName    string          `json:"vendorName"`
	PaymentMethod string          `json:"paymentMethod"`
	Total         decimal.Decimal `json:"total"`
	Checks        ChecksResponse  `json:"checks"`
	Priority      string          `json:"priority"`
	Escalated     bool            `json:"escalated"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type PendingQueueResponse struct {
	TraceID string                 `json:"traceId"`
	Orders  []PendingOrderResponse `json:"orders"`
	Total   int                    `json:"total"`
}

type EvaluatorStatsResponse struct {
	TraceID        string          `json:"traceId"`
	PendingToday   int             `json:"pendingToday"`
	EvaluatedToday int             `json:"evaluatedToday"`
	ApprovalRate   decimal.Decimal `json:"approvalRate"`
}
