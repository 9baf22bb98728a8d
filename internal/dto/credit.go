package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreditSummaryResponse struct {
	ClientID        int64           `json:"clientId"`
	ClientName      string          `json:"clientName"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`
	CreditUsed      decimal.Decimal `json:"creditUsed"`
	CreditAvailable decimal.Decimal `json:"creditAvailable"`
	OutstandingDebt decimal.Decimal `json:"outstandingDebt"`
	DaysDelinquent  int             `json:"daysDelinquent"`
	UsedPercentage  decimal.Decimal `json:"usedPercentage"`
	Status          string          `json:"status"`
	CanUseCredit    bool            `json:"canUseCredit"`
	Message         string          `json:"message"`
}

type CreditMovementResponse struct {
	ID            int64           `json:"id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	PreviousLimit decimal.Decimal `json:"previousLimit"`
	NewLimit      decimal.Decimal `json:"newLimit"`
	PreviousUsed  decimal.Decimal `json:"previousUsed"`
	NewUsed       decimal.Decimal `json:"newUsed"`
	Reason        string          `json:"reason"`
	ReferenceID   string          `json:"referenceId,omitempty"`
	ActorID       int64           `json:"actorId"`
	ActorRole     string          `json:"actorRole"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type CreditHistoryResponse struct {
	ClientID  int64                    `json:"clientId"`
	Movements []CreditMovementResponse `json:"movements"`
}

type ReleaseCreditRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason" validate:"required,max=255"`
	ReferenceID string          `json:"referenceId" validate:"max=50"`
}
