package evaluation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"preventa/internal/domain"
	"preventa/internal/infrastructure/retry"
)

type Evaluator interface {
	Evaluate(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error)
}

// UseCase retries an evaluation that lost a lock race and announces the
// outcome once it is committed.
type UseCase struct {
	service          Evaluator
	events           EventPublisher
	logger           *zap.Logger
	maxRetryAttempts int
	initialBackoff   time.Duration
}

func NewUseCase(service Evaluator, events EventPublisher, logger *zap.Logger, maxRetryAttempts int) *UseCase {
	return &UseCase{
		service:          service,
		events:           events,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		initialBackoff:   retry.DefaultInitialInterval,
	}
}

func (uc *UseCase) Evaluate(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error) {
	var result *Result
	err := retry.OnConflict(ctx, uc.logger, uc.maxRetryAttempts, uc.initialBackoff, func() error {
		var err error
		result, err = uc.service.Evaluate(ctx, actor, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	event := domain.OrderEvent{
		Type:        domain.DecisionEventType(result.Decision()),
		OrderID:     result.Order.ID,
		OrderNumber: result.Order.Number,
		VendorID:    result.Order.VendorID,
		ClientID:    result.Order.ClientID,
		Amount:      result.Order.Totals.Total,
		Actor:       actor,
		OccurredAt:  time.Now().UTC(),
	}
	switch {
	case result.Evaluation != nil && result.Evaluation.Decision == domain.DecisionRejected:
		event.Reason = result.Evaluation.RejectionReason
	case result.Escalation != nil:
		event.Reason = result.Escalation.Observations
	}

	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.Warn("evaluation event not published",
			zap.Int64("orderId", result.Order.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}

	return result, nil
}
