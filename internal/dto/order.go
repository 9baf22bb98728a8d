package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	ClientID      int64                    `json:"clientId" validate:"required,gt=0"`
	PaymentMethod string                   `json:"paymentMethod" validate:"required,oneof=credit cash yape plin"`
	SaleChannel   string                   `json:"saleChannel" validate:"omitempty,oneof=external internal"`
	Items         []CreateOrderItemRequest `json:"items" validate:"min=1,max=100,dive"`
	Observations  string                   `json:"observations" validate:"max=1000"`
	Latitude      *float64                 `json:"latitude" validate:"required_with=Longitude,omitempty,min=-90,max=90"`
	Longitude     *float64                 `json:"longitude" validate:"required_with=Latitude,omitempty,min=-180,max=180"`
}

type CreateOrderItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1,max=100000"`
	// ClientTypeID overrides the client's own price list for this line.
	ClientTypeID *int64 `json:"clientTypeId" validate:"omitempty,gt=0"`
}

type OrderItemResponse struct {
	ProductID      int64           `json:"productId"`
	ClientTypeID   int64           `json:"clientTypeId"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountPct    decimal.Decimal `json:"discountPct"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	TierLevel      int             `json:"tierLevel"`
}

type OrderResponse struct {
	TraceID       string              `json:"traceId,omitempty"`
	ID            int64               `json:"id"`
	Number        string              `json:"number"`
	VendorID      int64               `json:"vendorId"`
	ClientID      int64               `json:"clientId"`
	PaymentMethod string              `json:"paymentMethod"`
	SaleChannel   string              `json:"saleChannel"`
	Latitude      *float64            `json:"latitude,omitempty"`
	Longitude     *float64            `json:"longitude,omitempty"`
	Observations  string              `json:"observations,omitempty"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	DiscountTotal decimal.Decimal     `json:"discountTotal"`
	Total         decimal.Decimal     `json:"total"`
	State         string              `json:"state"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
}

type ClientOrderSummary struct {
	ID        int64           `json:"id"`
	Number    string          `json:"number"`
	Total     decimal.Decimal `json:"total"`
	State     string          `json:"state"`
	CreatedAt time.Time       `json:"createdAt"`
}

type ClientHistoryResponse struct {
	TraceID  string               `json:"traceId"`
	ClientID int64                `json:"clientId"`
	Orders   []ClientOrderSummary `json:"orders"`
}
