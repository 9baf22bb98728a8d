package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"preventa/internal/domain"
	apperrors "preventa/internal/errors"
	"preventa/internal/order/service"
)

// Mock implementations

type mockOrderService struct {
	CreateOrderFunc   func(ctx context.Context, vendor domain.Identity, in service.CreateOrderInput) (*domain.Order, error)
	GetOrderFunc      func(ctx context.Context, viewer domain.Identity, id int64) (*domain.Order, error)
	ClientHistoryFunc func(ctx context.Context, clientID int64) ([]domain.Order, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, vendor domain.Identity, in service.CreateOrderInput) (*domain.Order, error) {
	return m.CreateOrderFunc(ctx, vendor, in)
}

func (m *mockOrderService) GetOrder(ctx context.Context, viewer domain.Identity, id int64) (*domain.Order, error) {
	return m.GetOrderFunc(ctx, viewer, id)
}

func (m *mockOrderService) ClientHistory(ctx context.Context, clientID int64) ([]domain.Order, error) {
	return m.ClientHistoryFunc(ctx, clientID)
}

type mockPublisher struct {
	events []domain.OrderEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	m.events = append(m.events, event)
	return m.err
}

// Helper to create CreateOrderUseCase with test defaults
func newTestUseCase(svc OrderService, pub EventPublisher) *CreateOrderUseCase {
	uc := NewCreateOrderUseCase(svc, pub, zap.NewNop(), 3)
	uc.initialBackoff = time.Millisecond
	return uc
}

var vendor = domain.Identity{UserID: 21, Role: domain.RoleVendor}

func createdOrder() *domain.Order {
	return &domain.Order{
		ID:       501,
		Number:   "PED-20260314-0007",
		VendorID: 21,
		ClientID: 7,
		Totals:   domain.OrderTotals{Total: decimal.RequireFromString("615.00")},
		State:    domain.OrderPendingApproval,
	}
}

// Tests

func TestCreateOrder_PublishesOrderCreated(t *testing.T) {
	pub := &mockPublisher{}
	svc := &mockOrderService{
		CreateOrderFunc: func(ctx context.Context, v domain.Identity, in service.CreateOrderInput) (*domain.Order, error) {
			return createdOrder(), nil
		},
	}

	order, err := newTestUseCase(svc, pub).CreateOrder(context.Background(), vendor, service.CreateOrderInput{ClientID: 7})
	require.NoError(t, err)

	assert.Equal(t, int64(501), order.ID)
	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, domain.EventOrderCreated, event.Type)
	assert.Equal(t, "PED-20260314-0007", event.OrderNumber)
	assert.Equal(t, int64(21), event.VendorID)
	assert.Equal(t, int64(7), event.ClientID)
	assert.True(t, decimal.RequireFromString("615").Equal(event.Amount))
	assert.Equal(t, vendor, event.Actor)
}

func TestCreateOrder_RetriesConcurrencyConflict(t *testing.T) {
	attempts := 0
	pub := &mockPublisher{}
	svc := &mockOrderService{
		CreateOrderFunc: func(ctx context.Context, v domain.Identity, in service.CreateOrderInput) (*domain.Order, error) {
			attempts++
			if attempts == 1 {
				return nil, apperrors.NewConcurrencyConflictError("order number PED-20260314-0007 already taken", nil)
			}
			return createdOrder(), nil
		},
	}

	_, err := newTestUseCase(svc, pub).CreateOrder(context.Background(), vendor, service.CreateOrderInput{})
	require.NoError(t, err)

	assert.Equal(t, 2, attempts)
	assert.Len(t, pub.events, 1)
}

func TestCreateOrder_MaxRetriesExceeded(t *testing.T) {
	attempts := 0
	pub := &mockPublisher{}
	svc := &mockOrderService{
		CreateOrderFunc: func(ctx context.Context, v domain.Identity, in service.CreateOrderInput) (*domain.Order, error) {
			attempts++
			return nil, apperrors.NewConcurrencyConflictError("deadlock", nil)
		},
	}

	_, err := newTestUseCase(svc, pub).CreateOrder(context.Background(), vendor, service.CreateOrderInput{})

	_, ok := apperrors.IsConcurrencyConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, attempts)
	assert.Empty(t, pub.events)
}

func TestCreateOrder_ValidationErrorNotRetried(t *testing.T) {
	attempts := 0
	pub := &mockPublisher{}
	svc := &mockOrderService{
		CreateOrderFunc: func(ctx context.Context, v domain.Identity, in service.CreateOrderInput) (*domain.Order, error) {
			attempts++
			return nil, apperrors.NewValidationError("order must contain at least one item")
		},
	}

	_, err := newTestUseCase(svc, pub).CreateOrder(context.Background(), vendor, service.CreateOrderInput{})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, pub.events)
}

func TestCreateOrder_PublishFailureKeepsOrder(t *testing.T) {
	pub := &mockPublisher{err: errors.New("bus closed")}
	svc := &mockOrderService{
		CreateOrderFunc: func(ctx context.Context, v domain.Identity, in service.CreateOrderInput) (*domain.Order, error) {
			return createdOrder(), nil
		},
	}

	order, err := newTestUseCase(svc, pub).CreateOrder(context.Background(), vendor, service.CreateOrderInput{})

	require.NoError(t, err)
	assert.NotNil(t, order)
}
