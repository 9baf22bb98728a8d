package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"preventa/internal/domain"
	"preventa/internal/infrastructure/retry"
	"preventa/internal/order/service"
)

type OrderService interface {
	CreateOrder(ctx context.Context, vendor domain.Identity, in service.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, viewer domain.Identity, id int64) (*domain.Order, error)
	ClientHistory(ctx context.Context, clientID int64) ([]domain.Order, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

type CreateOrderUseCase struct {
	service          OrderService
	events           EventPublisher
	logger           *zap.Logger
	maxRetryAttempts int
	initialBackoff   time.Duration
}

func NewCreateOrderUseCase(
	service OrderService,
	events EventPublisher,
	logger *zap.Logger,
	maxRetryAttempts int,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		service:          service,
		events:           events,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		initialBackoff:   retry.DefaultInitialInterval,
	}
}

// CreateOrder retries the whole creation on lock contention or a taken order
// number, then announces the new order. A failed announcement never undoes
// the order.
func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, vendor domain.Identity, in service.CreateOrderInput) (*domain.Order, error) {
	uc.logger.Info("create order started",
		zap.Int64("vendorId", vendor.UserID),
		zap.Int64("clientId", in.ClientID),
		zap.Int("itemCount", len(in.Items)),
	)

	var order *domain.Order
	err := retry.OnConflict(ctx, uc.logger, uc.maxRetryAttempts, uc.initialBackoff, func() error {
		var err error
		order, err = uc.service.CreateOrder(ctx, vendor, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	event := domain.OrderEvent{
		Type:        domain.EventOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		VendorID:    order.VendorID,
		ClientID:    order.ClientID,
		Amount:      order.Totals.Total,
		Actor:       vendor,
		OccurredAt:  time.Now().UTC(),
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		uc.logger.Warn("order created event not published", zap.Int64("orderId", order.ID), zap.Error(err))
	}

	return order, nil
}

func (uc *CreateOrderUseCase) GetOrder(ctx context.Context, viewer domain.Identity, id int64) (*domain.Order, error) {
	return uc.service.GetOrder(ctx, viewer, id)
}

func (uc *CreateOrderUseCase) ClientHistory(ctx context.Context, clientID int64) ([]domain.Order, error) {
	return uc.service.ClientHistory(ctx, clientID)
}
