package credit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"preventa/internal/auth"
	"preventa/internal/domain"
	"preventa/internal/dto"
	apperrors "preventa/internal/errors"
	"preventa/internal/httpx"
)

type CreditService interface {
	Status(ctx context.Context, clientID int64) (*Summary, error)
	History(ctx context.Context, clientID int64, limit int) ([]domain.CreditMovement, error)
	Release(ctx context.Context, m Movement) (*domain.CreditMovement, error)
}

type Controller struct {
	service CreditService
	logger  *zap.Logger
}

func NewController(service CreditService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) GetStatus(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	summary, err := c.service.Status(r.Context(), clientID)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, dto.CreditSummaryResponse{
		ClientID:        summary.Client.ID,
		ClientName:      summary.Client.DisplayName(),
		CreditLimit:     summary.Client.CreditLimit,
		CreditUsed:      summary.Client.CreditUsed,
		CreditAvailable: summary.Available,
		OutstandingDebt: summary.Client.OutstandingDebt,
		DaysDelinquent:  summary.Client.DaysDelinquent,
		UsedPercentage:  summary.UsedPercentage,
		Status:          string(summary.Status),
		CanUseCredit:    summary.CanUseCredit,
		Message:         summary.Message,
	})
}

func (c *Controller) GetHistory(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpx.WriteError(w, logger, traceID, apperrors.NewValidationError("invalid limit", apperrors.ValidationDetail{
				Field:   "limit",
				Message: "limit must be a non-negative integer",
			}))
			return
		}
	}

	movements, err := c.service.History(r.Context(), clientID, limit)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, dto.CreditHistoryResponse{
		ClientID:  clientID,
		Movements: lo.Map(movements, func(m domain.CreditMovement, _ int) dto.CreditMovementResponse { return toMovementResponse(m) }),
	})
}

// Release records a client payment. Only supervisors reach this handler.
func (c *Controller) Release(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, traceID, apperrors.NewForbiddenError("authentication required"))
		return
	}

	clientID, err := clientIDParam(r)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	var req dto.ReleaseCreditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	movement, err := c.service.Release(r.Context(), Movement{
		ClientID:    clientID,
		Amount:      req.Amount,
		Reason:      req.Reason,
		ReferenceID: req.ReferenceID,
		Actor:       principal.Identity(),
	})
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	logger.Info("credit released", zap.Int64("clientId", clientID), zap.Int64("supervisorId", principal.UserID))
	httpx.WriteJSON(w, logger, http.StatusOK, toMovementResponse(*movement))
}

func clientIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clientId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid clientId", apperrors.ValidationDetail{
			Field:   "clientId",
			Message: "clientId must be a positive integer",
		})
	}
	return id, nil
}

func toMovementResponse(m domain.CreditMovement) dto.CreditMovementResponse {
	return dto.CreditMovementResponse{
		ID:            m.ID,
		Kind:          string(m.Kind),
		Amount:        m.Amount,
		PreviousLimit: m.PreviousLimit,
		NewLimit:      m.NewLimit,
		PreviousUsed:  m.PreviousUsed,
		NewUsed:       m.NewUsed,
		Reason:        m.Reason,
		ReferenceID:   m.ReferenceID,
		ActorID:       m.Actor.UserID,
		ActorRole:     string(m.Actor.Role),
		CreatedAt:     m.CreatedAt,
	}
}
