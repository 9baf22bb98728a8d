package dto

import "github.com/shopspring/decimal"

type QuoteRequest struct {
	ProductID     int64  `json:"productId" validate:"required,gt=0"`
	ClientTypeID  int64  `json:"clientTypeId" validate:"required,gt=0"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=credit cash yape plin"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
}

type CompareRequest struct {
	ProductID    int64 `json:"productId" validate:"required,gt=0"`
	ClientTypeID int64 `json:"clientTypeId" validate:"required,gt=0"`
	Quantity     int   `json:"quantity" validate:"required,min=1"`
}

type QuoteResponse struct {
	ProductID       int64           `json:"productId"`
	ClientTypeID    int64           `json:"clientTypeId"`
	PaymentMethod   string          `json:"paymentMethod"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPct     decimal.Decimal `json:"discountPct"`
	DiscountPerUnit decimal.Decimal `json:"discountPerUnit"`
	FinalUnitPrice  decimal.Decimal `json:"finalUnitPrice"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TierLevel       int             `json:"tierLevel"`
}

type CompareResponse struct {
	Credit     QuoteResponse   `json:"credit"`
	Cash       QuoteResponse   `json:"cash"`
	Savings    decimal.Decimal `json:"savings"`
	SavingsPct decimal.Decimal `json:"savingsPct"`
}
