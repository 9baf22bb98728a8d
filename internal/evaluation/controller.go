package evaluation

import (
	"context"
	"net/http"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"preventa/internal/auth"
	"preventa/internal/domain"
	"preventa/internal/dto"
	apperrors "preventa/internal/errors"
	"preventa/internal/httpx"
)

type PendingQueue interface {
	Pending(ctx context.Context, viewer domain.Identity) ([]QueueItem, error)
	Stats(ctx context.Context, viewer domain.Identity) (Stats, error)
}

type Controller struct {
	evaluator Evaluator
	queue     PendingQueue
	logger    *zap.Logger
}

func NewController(evaluator Evaluator, queue PendingQueue, logger *zap.Logger) *Controller {
	return &Controller{
		evaluator: evaluator,
		queue:     queue,
		logger:    logger,
	}
}

func (c *Controller) Evaluate(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, traceID, apperrors.NewForbiddenError("authentication required"))
		return
	}

	var req dto.EvaluateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	result, err := c.evaluator.Evaluate(r.Context(), principal.Identity(), EvaluateInput{
		OrderID:         req.OrderID,
		Decision:        domain.Decision(req.Decision),
		RejectionReason: req.RejectionReason,
		Observations:    req.Observations,
	})
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	resp := dto.EvaluationResponse{
		TraceID:     traceID,
		OrderID:     result.Order.ID,
		OrderNumber: result.Order.Number,
		Decision:    string(result.Decision()),
		OrderState:  string(result.Order.State),
		Checks:      toChecksResponse(result.Checks),
		Priority:    string(domain.PriorityFromChecks(result.Checks)),
		EvaluatorID: principal.UserID,
	}
	if result.Evaluation != nil {
		resp.RejectionReason = result.Evaluation.RejectionReason
		resp.DecidedAt = result.Evaluation.DecidedAt
	} else {
		resp.DecidedAt = result.Escalation.CreatedAt
	}

	httpx.WriteJSON(w, logger, http.StatusCreated, resp)
}

func (c *Controller) Pending(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, traceID, apperrors.NewForbiddenError("authentication required"))
		return
	}

	items, err := c.queue.Pending(r.Context(), principal.Identity())
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, dto.PendingQueueResponse{
		TraceID: traceID,
		Total:   len(items),
		Orders: lo.Map(items, func(it QueueItem, _ int) dto.PendingOrderResponse {
			return dto.PendingOrderResponse{
				OrderID:       it.Order.ID,
				OrderNumber:   it.Order.Number,
				ClientID:      it.Client.ID,
				ClientName:    it.Client.DisplayName(),
				VendorID:      it.Vendor.ID,
				VendorName:    it.Vendor.Name,
				PaymentMethod: string(it.Order.PaymentMethod),
				Total:         it.Order.Totals.Total,
				Checks:        toChecksResponse(it.Checks),
				Priority:      string(it.Priority),
				Escalated:     it.Escalated,
				CreatedAt:     it.Order.CreatedAt,
			}
		}),
	})
}

func (c *Controller) Stats(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, traceID, apperrors.NewForbiddenError("authentication required"))
		return
	}

	stats, err := c.queue.Stats(r.Context(), principal.Identity())
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, dto.EvaluatorStatsResponse{
		TraceID:        traceID,
		PendingToday:   stats.PendingToday,
		EvaluatedToday: stats.EvaluatedToday,
		ApprovalRate:   stats.ApprovalRate,
	})
}

func toChecksResponse(c domain.Checks) dto.ChecksResponse {
	return dto.ChecksResponse{
		VendorActive:        c.VendorActive,
		ClientInZone:        c.ClientInZone,
		AmountWithinLimit:   c.AmountWithinLimit,
		ClientNotDelinquent: c.ClientNotDelinquent,
		Passed:              c.Passed(),
	}
}
