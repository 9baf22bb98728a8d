package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "preventa/internal/errors"
)

type Client struct {
	ID              int64
	Code            string
	TaxID           string
	BusinessName    string
	TradeName       string
	ClientTypeID    *int64
	IsActive        bool
	CreditLimit     decimal.Decimal
	CreditUsed      decimal.Decimal
	OutstandingDebt decimal.Decimal
	IsDelinquent    bool
	DaysDelinquent  int
	Zone            Zone
	UpdatedAt       time.Time
}

func (c Client) DisplayName() string {
	if c.TradeName != "" {
		return c.TradeName
	}
	if c.BusinessName != "" {
		return c.BusinessName
	}
	return "RUC " + c.TaxID
}

// CreditAvailable is never negative even when a supervisor left the client over its limit.
func (c Client) CreditAvailable() decimal.Decimal {
	available := c.CreditLimit.Sub(c.CreditUsed)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

func (c Client) CanPurchase(amount decimal.Decimal) bool {
	return c.CreditAvailable().GreaterThanOrEqual(amount)
}

func (c Client) UsedPercentage() decimal.Decimal {
	if !c.CreditLimit.IsPositive() {
		return decimal.Zero
	}
	return Round2(c.CreditUsed.Div(c.CreditLimit).Mul(hundred))
}

type CreditMovementKind string

const (
	MovementReserve CreditMovementKind = "reserve"
	MovementRelease CreditMovementKind = "release"
)

// CreditMovement is one append-only credit history record.
type CreditMovement struct {
	ID            int64
	ClientID      int64
	Kind          CreditMovementKind
	Amount        decimal.Decimal
	PreviousLimit decimal.Decimal
	NewLimit      decimal.Decimal
	PreviousUsed  decimal.Decimal
	NewUsed       decimal.Decimal
	Reason        string
	ReferenceID   string
	Actor         Identity
	CreatedAt     time.Time
}

func validateMovementAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError("amount must be positive", apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be greater than zero",
		})
	}
	return nil
}

// Reserve consumes credit. The caller must hold the client row lock.
func (c *Client) Reserve(amount decimal.Decimal, reason string, actor Identity) (CreditMovement, error) {
	if err := validateMovementAmount(amount); err != nil {
		return CreditMovement{}, err
	}
	if !c.CanPurchase(amount) {
		return CreditMovement{}, apperrors.NewInsufficientCreditError(fmt.Sprintf(
			"client %d has %s credit available, %s required",
			c.ID, c.CreditAvailable().StringFixed(2), amount.StringFixed(2),
		))
	}

	movement := c.movement(MovementReserve, amount, reason, actor)
	c.CreditUsed = c.CreditUsed.Add(amount)
	movement.NewUsed = c.CreditUsed
	return movement, nil
}

// Release frees credit, clamping usage at zero.
func (c *Client) Release(amount decimal.Decimal, reason string, actor Identity) (CreditMovement, error) {
	if err := validateMovementAmount(amount); err != nil {
		return CreditMovement{}, err
	}

	movement := c.movement(MovementRelease, amount, reason, actor)
	used := c.CreditUsed.Sub(amount)
	if used.IsNegative() {
		used = decimal.Zero
	}
	c.CreditUsed = used
	movement.NewUsed = c.CreditUsed
	return movement, nil
}

func (c *Client) movement(kind CreditMovementKind, amount decimal.Decimal, reason string, actor Identity) CreditMovement {
	return CreditMovement{
		ClientID:      c.ID,
		Kind:          kind,
		Amount:        amount,
		PreviousLimit: c.CreditLimit,
		NewLimit:      c.CreditLimit,
		PreviousUsed:  c.CreditUsed,
		Reason:        reason,
		Actor:         actor,
	}
}

type CreditStatus string

const (
	CreditNormal     CreditStatus = "normal"
	CreditWarning    CreditStatus = "warning"
	CreditDelinquent CreditStatus = "delinquent"
	CreditBlocked    CreditStatus = "blocked"
)

const (
	blockedAfterDays        = 30
	limitedCreditUntilDays  = 15
	warningAvailablePercent = 20
)

func (c Client) CreditStatus() CreditStatus {
	switch {
	case c.IsDelinquent && c.DaysDelinquent > blockedAfterDays:
		return CreditBlocked
	case c.IsDelinquent || c.OutstandingDebt.IsPositive():
		return CreditDelinquent
	case c.CreditAvailable().LessThan(c.CreditLimit.Mul(decimal.NewFromInt(warningAvailablePercent)).Div(hundred)):
		return CreditWarning
	default:
		return CreditNormal
	}
}

// CanUseCredit is a hint for vendors and evaluators; it never rejects an order by itself.
func (c Client) CanUseCredit() bool {
	switch c.CreditStatus() {
	case CreditBlocked:
		return false
	case CreditDelinquent:
		return c.DaysDelinquent <= limitedCreditUntilDays
	default:
		return true
	}
}
