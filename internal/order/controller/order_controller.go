package controller

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
	"preventa/internal/order/service"
)

type OrderUseCase interface {
	CreateOrder(ctx context.Context, vendor domain.Identity, in service.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, viewer domain.Identity, id int64) (*domain.Order, error)
	ClientHistory(ctx context.Context, clientID int64) ([]domain.Order, error)
}

type OrderController struct {
	useCase OrderUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase OrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, traceID, apperrors.NewForbiddenError("authentication required"))
		return
	}

	var req dto.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	order, err := c.useCase.CreateOrder(r.Context(), principal.Identity(), toCreateOrderInput(req))
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	resp := toOrderResponse(order)
	resp.TraceID = traceID
	httpx.WriteJSON(w, logger, http.StatusCreated, resp)
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, logger, traceID, apperrors.NewForbiddenError("authentication required"))
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		httpx.WriteError(w, logger, traceID, apperrors.NewValidationError("invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		}))
		return
	}

	order, err := c.useCase.GetOrder(r.Context(), principal.Identity(), orderID)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toOrderResponse(order))
}

// ClientHistory lists a client's latest orders for the evaluation screen.
func (c *OrderController) ClientHistory(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	clientID, err := strconv.ParseInt(chi.URLParam(r, "clientId"), 10, 64)
	if err != nil || clientID <= 0 {
		httpx.WriteError(w, logger, traceID, apperrors.NewValidationError("invalid clientId", apperrors.ValidationDetail{
			Field:   "clientId",
			Message: "clientId must be a positive integer",
		}))
		return
	}

	orders, err := c.useCase.ClientHistory(r.Context(), clientID)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, dto.ClientHistoryResponse{
		TraceID:  traceID,
		ClientID: clientID,
		Orders: lo.Map(orders, func(o domain.Order, _ int) dto.ClientOrderSummary {
			return dto.ClientOrderSummary{
				ID:        o.ID,
				Number:    o.Number,
				Total:     o.Totals.Total,
				State:     string(o.State),
				CreatedAt: o.CreatedAt,
			}
		}),
	})
}

func toCreateOrderInput(req dto.CreateOrderRequest) service.CreateOrderInput {
	in := service.CreateOrderInput{
		ClientID:      req.ClientID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		SaleChannel:   domain.SaleChannel(req.SaleChannel),
		Observations:  req.Observations,
		Items: lo.Map(req.Items, func(it dto.CreateOrderItemRequest, _ int) service.ItemInput {
			return service.ItemInput{
				ProductID:    it.ProductID,
				Quantity:     it.Quantity,
				ClientTypeID: it.ClientTypeID,
			}
		}),
	}
	if req.Latitude != nil && req.Longitude != nil {
		in.Coordinates = &domain.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	return in
}

func toOrderResponse(o *domain.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:            o.ID,
		Number:        o.Number,
		VendorID:      o.VendorID,
		ClientID:      o.ClientID,
		PaymentMethod: string(o.PaymentMethod),
		SaleChannel:   string(o.SaleChannel),
		Observations:  o.Observations,
		Subtotal:      o.Totals.Subtotal,
		DiscountTotal: o.Totals.DiscountTotal,
		Total:         o.Totals.Total,
		State:         string(o.State),
		CreatedAt:     o.CreatedAt,
		Items: lo.Map(o.Items, func(it domain.OrderItem, _ int) dto.OrderItemResponse {
			return dto.OrderItemResponse{
				ProductID:      it.ProductID,
				ClientTypeID:   it.ClientTypeID,
				Quantity:       it.Quantity,
				UnitPrice:      it.UnitPrice,
				DiscountPct:    it.DiscountPct,
				DiscountAmount: it.DiscountAmount,
				Subtotal:       it.Subtotal,
				Total:          it.Total,
				TierLevel:      it.TierLevel,
			}
		}),
	}
	if o.Coordinates != nil {
		resp.Latitude = lo.ToPtr(o.Coordinates.Latitude)
		resp.Longitude = lo.ToPtr(o.Coordinates.Longitude)
	}
	return resp
}
