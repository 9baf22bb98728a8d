package evaluation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"preventa/internal/credit"
	"preventa/internal/domain"
	apperrors "preventa/internal/errors"
)

type EvaluateInput struct {
	OrderID         int64
	Decision        domain.Decision
	RejectionReason string
	Observations    string
}

// Result is what one Evaluate call recorded. Exactly one of Evaluation and
// Escalation is set.
type Result struct {
	Order      domain.Order
	Checks     domain.Checks
	Evaluation *domain.Evaluation
	Escalation *domain.Escalation
	Credit     *domain.CreditMovement
}

func (r Result) Decision() domain.Decision {
	if r.Evaluation != nil {
		return r.Evaluation.Decision
	}
	return domain.DecisionEscalated
}

type Service struct {
	tx          Transactor
	orders      OrderRepository
	clients     ClientRepository
	staff       StaffRepository
	evaluations Repository
	ledger      CreditReserver
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(
	tx Transactor,
	orders OrderRepository,
	clients ClientRepository,
	staff StaffRepository,
	evaluations Repository,
	ledger CreditReserver,
	logger *zap.Logger,
) *Service {
	return &Service{
		tx:          tx,
		orders:      orders,
		clients:     clients,
		staff:       staff,
		evaluations: evaluations,
		ledger:      ledger,
		logger:      logger,
		now:         time.Now,
	}
}

// Evaluate records a decision on a pending order. Everything it writes
// (evaluation or escalation, order state, credit reservation and history)
// commits together or not at all.
func (s *Service) Evaluate(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error) {
	if err := validateInput(actor, in); err != nil {
		return nil, err
	}

	evaluator, err := loadEvaluator(ctx, s.staff, actor)
	if err != nil {
		return nil, err
	}

	var result *Result
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		order, err := s.orders.FindByIDForUpdate(ctx, tx, in.OrderID)
		if err != nil {
			return err
		}
		if !order.IsPending() {
			return apperrors.NewAlreadyEvaluatedError(fmt.Sprintf("order %s is already %s", order.Number, order.State))
		}
		if err := s.checkEscalation(ctx, tx, order, actor, in.Decision); err != nil {
			return err
		}

		checks, err := s.runChecks(ctx, order, *evaluator)
		if err != nil {
			return err
		}
		result = &Result{Checks: checks}

		now := s.now()
		if in.Decision == domain.DecisionEscalated {
			esc := &domain.Escalation{
				OrderID:      order.ID,
				Checks:       checks,
				EscalatedBy:  actor,
				Observations: in.Observations,
				CreatedAt:    now,
			}
			if esc.ID, err = s.evaluations.InsertEscalation(ctx, tx, esc); err != nil {
				return err
			}
			result.Order = *order
			result.Escalation = esc
			return nil
		}

		if in.Decision == domain.DecisionApproved && !checks.AmountWithinLimit {
			return apperrors.NewAuthorizationExceededError(fmt.Sprintf(
				"order total %s exceeds the approval ceiling of %s",
				order.Totals.Total.StringFixed(2), evaluator.Authority.Ceiling.StringFixed(2),
			))
		}

		if err := order.Apply(in.Decision); err != nil {
			return err
		}
		if err := s.orders.UpdateState(ctx, tx, order.ID, order.State); err != nil {
			return err
		}

		eval := &domain.Evaluation{
			OrderID:         order.ID,
			Checks:          checks,
			Decision:        in.Decision,
			RejectionReason: strings.TrimSpace(in.RejectionReason),
			Observations:    in.Observations,
			Evaluator:       actor,
			DecidedAt:       now,
		}
		if eval.ID, err = s.evaluations.Insert(ctx, tx, eval); err != nil {
			return err
		}

		if in.Decision == domain.DecisionApproved && order.PaymentMethod.RequiresCredit() {
			result.Credit, err = s.ledger.Reserve(ctx, tx, credit.Movement{
				ClientID:    order.ClientID,
				Amount:      order.Totals.Total,
				Reason:      fmt.Sprintf("order %s approved", order.Number),
				ReferenceID: order.Number,
				Actor:       actor,
			})
			if err != nil {
				return err
			}
		}

		result.Order = *order
		result.Evaluation = eval
		return nil
	})
	if err != nil {
		s.logger.Info("evaluation not recorded",
			zap.Int64("orderId", in.OrderID),
			zap.String("decision", string(in.Decision)),
			zap.Int64("evaluatorId", actor.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("evaluation recorded",
		zap.Int64("orderId", result.Order.ID),
		zap.String("orderNumber", result.Order.Number),
		zap.String("decision", string(in.Decision)),
		zap.String("orderState", string(result.Order.State)),
		zap.Int("checksPassed", result.Checks.Passed()),
		zap.Int64("evaluatorId", actor.UserID),
	)

	return result, nil
}

// checkEscalation enforces that an escalated order is escalated only once
// and that only a supervisor decides it afterwards.
func (s *Service) checkEscalation(ctx context.Context, tx *sql.Tx, order *domain.Order, actor domain.Identity, decision domain.Decision) error {
	escalated, err := s.evaluations.IsEscalated(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	if !escalated {
		return nil
	}
	if decision == domain.DecisionEscalated {
		return apperrors.NewConflictError(fmt.Sprintf("order %s is already escalated", order.Number))
	}
	if actor.Role != domain.RoleSupervisor {
		return apperrors.NewForbiddenError(fmt.Sprintf("order %s is escalated and awaits a supervisor", order.Number))
	}
	return nil
}

func validateInput(actor domain.Identity, in EvaluateInput) error {
	if !in.Decision.Valid() {
		return apperrors.NewValidationError("invalid decision", apperrors.ValidationDetail{
			Field:   "decision",
			Message: fmt.Sprintf("unknown decision %q", in.Decision),
		})
	}
	if in.Decision == domain.DecisionRejected && strings.TrimSpace(in.RejectionReason) == "" {
		return apperrors.NewValidationError("rejection reason is required", apperrors.ValidationDetail{
			Field:   "rejectionReason",
			Message: "a rejected order needs a reason",
		})
	}
	if in.Decision == domain.DecisionEscalated && actor.Role != domain.RoleEvaluator {
		return apperrors.NewForbiddenError("only evaluators can escalate an order")
	}
	return nil
}

// loadEvaluator resolves the acting evaluator or supervisor with its ceiling.
func loadEvaluator(ctx context.Context, repo StaffRepository, actor domain.Identity) (*domain.Staff, error) {
	staff, err := repo.FindStaff(ctx, actor.UserID)
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("%s %d is not registered", actor.Role, actor.UserID))
	}
	if err != nil {
		return nil, err
	}
	if staff.Role != actor.Role || !staff.CanEvaluate() {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("user %d cannot evaluate orders", actor.UserID))
	}
	if !staff.IsActive() {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("%s %d is inactive", actor.Role, actor.UserID))
	}
	return staff, nil
}

func (s *Service) runChecks(ctx context.Context, order *domain.Order, evaluator domain.Staff) (domain.Checks, error) {
	var vendor domain.Actor
	v, err := s.staff.FindStaff(ctx, order.VendorID)
	switch _, notFound := apperrors.IsNotFoundError(err); {
	case err == nil:
		vendor = *v
	case notFound:
		s.logger.Warn("order vendor missing", zap.Int64("orderId", order.ID), zap.Int64("vendorId", order.VendorID))
	default:
		return domain.Checks{}, err
	}

	client, err := s.clients.FindByID(ctx, order.ClientID)
	if err != nil {
		return domain.Checks{}, err
	}

	return domain.RunChecks(vendor, *client, evaluator, order.Totals.Total), nil
}
