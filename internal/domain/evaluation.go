package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Decision string

const (
	DecisionApproved  Decision = "approved"
	DecisionRejected  Decision = "rejected"
	DecisionEscalated Decision = "escalated"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionApproved, DecisionRejected, DecisionEscalated:
		return true
	}
	return false
}

func (d Decision) State() OrderState {
	switch d {
	case DecisionApproved:
		return OrderApproved
	case DecisionRejected:
		return OrderRejected
	default:
		return OrderPendingApproval
	}
}

// Checks are the automatic eligibility results recorded with every decision.
type Checks struct {
	VendorActive        bool `json:"vendorActive"`
	ClientInZone        bool `json:"clientInZone"`
	AmountWithinLimit   bool `json:"amountWithinLimit"`
	ClientNotDelinquent bool `json:"clientNotDelinquent"`
}

func (c Checks) Passed() int {
	n := 0
	for _, ok := range []bool{c.VendorActive, c.ClientInZone, c.AmountWithinLimit, c.ClientNotDelinquent} {
		if ok {
			n++
		}
	}
	return n
}

// RunChecks evaluates an order total for a client placed by vendor against
// the evaluator's zone and ceiling.
func RunChecks(vendor Actor, client Client, evaluator Staff, total decimal.Decimal) Checks {
	checks := Checks{
		VendorActive:        vendor != nil && vendor.IsActive(),
		ClientInZone:        evaluator.Zone.Covers(client.Zone),
		ClientNotDelinquent: !client.IsDelinquent,
	}
	if evaluator.Authority != nil {
		checks.AmountWithinLimit = evaluator.Authority.CanApprove(total)
	}
	return checks
}

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityUrgent   Priority = "urgent"
	PriorityNormal   Priority = "normal"
)

// Rank orders priorities for queue sorting, lower first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityUrgent:
		return 1
	default:
		return 2
	}
}

func PriorityFromChecks(c Checks) Priority {
	switch passed := c.Passed(); {
	case passed == 4:
		return PriorityNormal
	case passed >= 2:
		return PriorityUrgent
	default:
		return PriorityCritical
	}
}

// Evaluation is the single final decision on an order.
type Evaluation struct {
	ID              int64
	OrderID         int64
	Checks          Checks
	Decision        Decision
	RejectionReason string
	Observations    string
	Evaluator       Identity
	DecidedAt       time.Time
}

// Escalation marks a pending order as routed to a supervisor.
type Escalation struct {
	ID           int64
	OrderID      int64
	Checks       Checks
	EscalatedBy  Identity
	Observations string
	CreatedAt    time.Time
}
