package pricing

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"preventa/internal/domain"
	"preventa/internal/dto"
	apperrors "preventa/internal/errors"
	"preventa/internal/httpx"
)

type PriceResolver interface {
	ResolvePrice(ctx context.Context, productID, clientTypeID int64, method domain.PaymentMethod, quantity int) (*domain.PriceQuote, error)
	CompareMethods(ctx context.Context, productID, clientTypeID int64, quantity int) (*Comparison, error)
}

type Controller struct {
	resolver PriceResolver
	logger   *zap.Logger
}

func NewController(resolver PriceResolver, logger *zap.Logger) *Controller {
	return &Controller{
		resolver: resolver,
		logger:   logger,
	}
}

// Quote handles GET /prices/quote?productId&clientTypeId&paymentMethod&quantity.
func (c *Controller) Quote(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	q := r.URL.Query()
	var details []apperrors.ValidationDetail
	req := dto.QuoteRequest{
		ProductID:     parseInt64(q.Get("productId"), "productId", &details),
		ClientTypeID:  parseInt64(q.Get("clientTypeId"), "clientTypeId", &details),
		PaymentMethod: q.Get("paymentMethod"),
		Quantity:      int(parseInt64(q.Get("quantity"), "quantity", &details)),
	}
	if err := validateQuery(req, details); err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	quote, err := c.resolver.ResolvePrice(r.Context(), req.ProductID, req.ClientTypeID, domain.PaymentMethod(req.PaymentMethod), req.Quantity)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, toQuoteResponse(*quote))
}

// Compare handles GET /prices/compare?productId&clientTypeId&quantity.
func (c *Controller) Compare(w http.ResponseWriter, r *http.Request) {
	traceID, logger := httpx.Trace(c.logger, r)

	q := r.URL.Query()
	var details []apperrors.ValidationDetail
	req := dto.CompareRequest{
		ProductID:    parseInt64(q.Get("productId"), "productId", &details),
		ClientTypeID: parseInt64(q.Get("clientTypeId"), "clientTypeId", &details),
		Quantity:     int(parseInt64(q.Get("quantity"), "quantity", &details)),
	}
	if err := validateQuery(req, details); err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	cmp, err := c.resolver.CompareMethods(r.Context(), req.ProductID, req.ClientTypeID, req.Quantity)
	if err != nil {
		httpx.WriteError(w, logger, traceID, err)
		return
	}

	httpx.WriteJSON(w, logger, http.StatusOK, dto.CompareResponse{
		Credit:     toQuoteResponse(cmp.Credit),
		Cash:       toQuoteResponse(cmp.Cash),
		Savings:    cmp.Savings,
		SavingsPct: cmp.SavingsPct,
	})
}

func parseInt64(raw, field string, details *[]apperrors.ValidationDetail) int64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*details = append(*details, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " must be an integer",
		})
		return 0
	}
	return v
}

func validateQuery(req interface{}, parseDetails []apperrors.ValidationDetail) error {
	if len(parseDetails) > 0 {
		return apperrors.NewValidationError("invalid query parameters", parseDetails...)
	}
	return dto.Validate(req)
}

func toQuoteResponse(q domain.PriceQuote) dto.QuoteResponse {
	return dto.QuoteResponse{
		ProductID:       q.ProductID,
		ClientTypeID:    q.ClientTypeID,
		PaymentMethod:   string(q.PaymentMethod),
		Quantity:        q.Quantity,
		UnitPrice:       q.UnitPrice,
		DiscountPct:     q.DiscountPct,
		DiscountPerUnit: q.DiscountPerUnit,
		FinalUnitPrice:  q.FinalUnitPrice,
		Subtotal:        q.Subtotal(),
		TierLevel:       q.TierLevel,
	}
}
