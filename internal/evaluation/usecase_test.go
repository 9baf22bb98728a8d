package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"preventa/internal/domain"
	apperrors "preventa/internal/errors"
)

type mockEvaluator struct {
	EvaluateFunc func(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error)
	calls        int
}

func (m *mockEvaluator) Evaluate(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error) {
	m.calls++
	return m.EvaluateFunc(ctx, actor, in)
}

type mockPublisher struct {
	events []domain.OrderEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func newTestUseCase(svc Evaluator, pub EventPublisher) *UseCase {
	uc := NewUseCase(svc, pub, zap.NewNop(), 3)
	uc.initialBackoff = time.Millisecond
	return uc
}

func decidedOrder(state domain.OrderState) domain.Order {
	return domain.Order{
		ID:       501,
		Number:   "PED-20260314-0001",
		VendorID: vendorID,
		ClientID: 7,
		Totals:   domain.OrderTotals{Total: dec("1200.00")},
		State:    state,
	}
}

func TestUseCase_PublishesDecision(t *testing.T) {
	tests := []struct {
		name       string
		result     *Result
		wantType   domain.EventType
		wantReason string
	}{
		{
			name: "approved",
			result: &Result{
				Order:      decidedOrder(domain.OrderApproved),
				Evaluation: &domain.Evaluation{Decision: domain.DecisionApproved},
			},
			wantType: domain.EventOrderApproved,
		},
		{
			name: "rejected",
			result: &Result{
				Order:      decidedOrder(domain.OrderRejected),
				Evaluation: &domain.Evaluation{Decision: domain.DecisionRejected, RejectionReason: "client over limit"},
			},
			wantType:   domain.EventOrderRejected,
			wantReason: "client over limit",
		},
		{
			name: "escalated",
			result: &Result{
				Order:      decidedOrder(domain.OrderPendingApproval),
				Escalation: &domain.Escalation{Observations: "needs a supervisor"},
			},
			wantType:   domain.EventOrderEscalated,
			wantReason: "needs a supervisor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEvaluator{EvaluateFunc: func(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error) {
				return tt.result, nil
			}}
			pub := &mockPublisher{}

			result, err := newTestUseCase(svc, pub).Evaluate(context.Background(), evaluatorIdentity, EvaluateInput{OrderID: 501})
			require.NoError(t, err)
			assert.Same(t, tt.result, result)

			require.Len(t, pub.events, 1)
			ev := pub.events[0]
			assert.Equal(t, tt.wantType, ev.Type)
			assert.Equal(t, tt.wantReason, ev.Reason)
			assert.Equal(t, "PED-20260314-0001", ev.OrderNumber)
			assert.Equal(t, int64(vendorID), ev.VendorID)
			assert.Equal(t, int64(7), ev.ClientID)
			assert.Equal(t, evaluatorIdentity, ev.Actor)
		})
	}
}

func TestUseCase_RetriesConcurrencyConflict(t *testing.T) {
	svc := &mockEvaluator{}
	svc.EvaluateFunc = func(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error) {
		if svc.calls < 3 {
			return nil, apperrors.NewConcurrencyConflictError("deadlock", errors.New("Error 1213"))
		}
		return &Result{Order: decidedOrder(domain.OrderApproved), Evaluation: &domain.Evaluation{Decision: domain.DecisionApproved}}, nil
	}
	pub := &mockPublisher{}

	_, err := newTestUseCase(svc, pub).Evaluate(context.Background(), evaluatorIdentity, EvaluateInput{OrderID: 501})

	require.NoError(t, err)
	assert.Equal(t, 3, svc.calls)
	assert.Len(t, pub.events, 1)
}

func TestUseCase_BusinessErrorsAreNotRetried(t *testing.T) {
	svc := &mockEvaluator{EvaluateFunc: func(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error) {
		return nil, apperrors.NewAlreadyEvaluatedError("order PED-20260314-0001 is already approved")
	}}
	pub := &mockPublisher{}

	_, err := newTestUseCase(svc, pub).Evaluate(context.Background(), evaluatorIdentity, EvaluateInput{OrderID: 501})

	assert.True(t, apperrors.IsAlreadyEvaluated(err))
	assert.Equal(t, 1, svc.calls)
	assert.Empty(t, pub.events)
}

func TestUseCase_PublishFailureKeepsDecision(t *testing.T) {
	svc := &mockEvaluator{EvaluateFunc: func(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error) {
		return &Result{Order: decidedOrder(domain.OrderApproved), Evaluation: &domain.Evaluation{Decision: domain.DecisionApproved}}, nil
	}}
	pub := &mockPublisher{err: errors.New("bus closed")}

	result, err := newTestUseCase(svc, pub).Evaluate(context.Background(), evaluatorIdentity, EvaluateInput{OrderID: 501})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderApproved, result.Order.State)
}
