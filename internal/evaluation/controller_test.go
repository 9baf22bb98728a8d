package evaluation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"preventa/internal/auth"
	"preventa/internal/domain"
	"preventa/internal/dto"
	apperrors "preventa/internal/errors"
)

type mockQueue struct {
	PendingFunc func(ctx context.Context, viewer domain.Identity) ([]QueueItem, error)
	StatsFunc   func(ctx context.Context, viewer domain.Identity) (Stats, error)
}

func (m *mockQueue) Pending(ctx context.Context, viewer domain.Identity) ([]QueueItem, error) {
	return m.PendingFunc(ctx, viewer)
}

func (m *mockQueue) Stats(ctx context.Context, viewer domain.Identity) (Stats, error) {
	return m.StatsFunc(ctx, viewer)
}

func asEvaluator(r *http.Request) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserID: evaluatorID, Role: domain.RoleEvaluator}))
}

func TestController_Evaluate(t *testing.T) {
	decidedAt := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	var got EvaluateInput
	svc := &mockEvaluator{EvaluateFunc: func(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error) {
		got = in
		assert.Equal(t, evaluatorIdentity, actor)
		return &Result{
			Order:  decidedOrder(domain.OrderRejected),
			Checks: domain.Checks{VendorActive: true, ClientInZone: true},
			Evaluation: &domain.Evaluation{
				Decision:        domain.DecisionRejected,
				RejectionReason: "debt pending",
				DecidedAt:       decidedAt,
			},
		}, nil
	}}
	ctrl := NewController(svc, &mockQueue{}, zap.NewNop())

	body := `{"orderId":501,"decision":"rejected","rejectionReason":"debt pending"}`
	rec := httptest.NewRecorder()
	ctrl.Evaluate(rec, asEvaluator(httptest.NewRequest(http.MethodPost, "/api/v1/evaluations", strings.NewReader(body))))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.DecisionRejected, got.Decision)

	var resp dto.EvaluationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rejected", resp.Decision)
	assert.Equal(t, "rejected", resp.OrderState)
	assert.Equal(t, "debt pending", resp.RejectionReason)
	assert.Equal(t, 2, resp.Checks.Passed)
	assert.Equal(t, "urgent", resp.Priority)
	assert.Equal(t, int64(evaluatorID), resp.EvaluatorID)
	assert.True(t, decidedAt.Equal(resp.DecidedAt))
}

func TestController_Evaluate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown decision", `{"orderId":501,"decision":"maybe"}`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing order", `{"decision":"approved"}`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"over ceiling", `{"orderId":502,"decision":"approved"}`, apperrors.NewAuthorizationExceededError("over"), http.StatusForbidden, "AUTHORIZATION_EXCEEDED"},
		{"already evaluated", `{"orderId":501,"decision":"approved"}`, apperrors.NewAlreadyEvaluatedError("done"), http.StatusConflict, "ALREADY_EVALUATED"},
		{"insufficient credit", `{"orderId":501,"decision":"approved"}`, apperrors.NewInsufficientCreditError("short"), http.StatusUnprocessableEntity, "INSUFFICIENT_CREDIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEvaluator{EvaluateFunc: func(ctx context.Context, actor domain.Identity, in EvaluateInput) (*Result, error) {
				return nil, tt.err
			}}
			ctrl := NewController(svc, &mockQueue{}, zap.NewNop())

			rec := httptest.NewRecorder()
			ctrl.Evaluate(rec, asEvaluator(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			if tt.err == nil {
				assert.Equal(t, 0, svc.calls)
			}
		})
	}
}

func TestController_Pending(t *testing.T) {
	queue := &mockQueue{PendingFunc: func(ctx context.Context, viewer domain.Identity) ([]QueueItem, error) {
		p := pendingOrder(1, 0, "100", false, true, "Surco")
		p.Client.BusinessName = "Bodega Don Pepe"
		p.Vendor.Name = "Rosa Vendedora"
		return []QueueItem{{PendingOrder: p, Checks: domain.Checks{VendorActive: true}, Priority: domain.PriorityCritical}}, nil
	}}
	ctrl := NewController(&mockEvaluator{}, queue, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Pending(rec, asEvaluator(httptest.NewRequest(http.MethodGet, "/api/v1/evaluations/pending", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.PendingQueueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Bodega Don Pepe", resp.Orders[0].ClientName)
	assert.Equal(t, "Rosa Vendedora", resp.Orders[0].VendorName)
	assert.Equal(t, "critical", resp.Orders[0].Priority)
	assert.True(t, resp.Orders[0].Escalated)
}

func TestController_Unauthenticated(t *testing.T) {
	ctrl := NewController(&mockEvaluator{}, &mockQueue{}, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Pending(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestController_Stats(t *testing.T) {
	queue := &mockQueue{StatsFunc: func(ctx context.Context, viewer domain.Identity) (Stats, error) {
		assert.Equal(t, int64(evaluatorID), viewer.UserID)
		return Stats{PendingToday: 4, EvaluatedToday: 2, ApprovalRate: dec("66.7")}, nil
	}}
	ctrl := NewController(&mockEvaluator{}, queue, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Stats(rec, asEvaluator(httptest.NewRequest(http.MethodGet, "/api/v1/evaluations/stats", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.EvaluatorStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.PendingToday)
	assert.Equal(t, 2, resp.EvaluatedToday)
	assert.True(t, dec("66.7").Equal(resp.ApprovalRate))
	assert.NotEmpty(t, resp.TraceID)
}

func TestController_StatsForbidden(t *testing.T) {
	queue := &mockQueue{StatsFunc: func(ctx context.Context, viewer domain.Identity) (Stats, error) {
		return Stats{}, apperrors.NewForbiddenError("user 31 cannot evaluate orders")
	}}
	ctrl := NewController(&mockEvaluator{}, queue, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Stats(rec, asEvaluator(httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
