package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"preventa/internal/domain"
	apperrors "preventa/internal/errors"
	"preventa/internal/pricing"
)

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type ClientRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	FindClientType(ctx context.Context, id int64) (*domain.ClientType, error)
}

type ProductRepository interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

type ActorRepository interface {
	FindActor(ctx context.Context, id int64, role domain.Role) (domain.Actor, error)
}

type PriceResolver interface {
	ResolvePrice(ctx context.Context, productID, clientTypeID int64, method domain.PaymentMethod, quantity int) (*domain.PriceQuote, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, o *domain.Order) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByClient(ctx context.Context, clientID int64, limit int) ([]domain.Order, error)
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (int64, error)
	FindByOrder(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}

type SequenceRepository interface {
	Next(ctx context.Context, tx *sql.Tx, day time.Time) (int64, error)
}

// ClientHistoryLimit caps the orders returned by ClientHistory.
const ClientHistoryLimit = 10

type ItemInput struct {
	ProductID int64
	Quantity  int
	// ClientTypeID overrides the client's price list for this line.
	ClientTypeID *int64
}

type CreateOrderInput struct {
	ClientID      int64
	PaymentMethod domain.PaymentMethod
	SaleChannel   domain.SaleChannel
	Items         []ItemInput
	Observations  string
	Coordinates   *domain.Coordinates
}

type OrderService struct {
	tx           Transactor
	clients      ClientRepository
	products     ProductRepository
	actors       ActorRepository
	prices       PriceResolver
	orders       OrderRepository
	items        OrderItemRepository
	sequences    SequenceRepository
	logger       *zap.Logger
	numberPrefix string
	now          func() time.Time
}

func NewOrderService(
	tx Transactor,
	clients ClientRepository,
	products ProductRepository,
	actors ActorRepository,
	prices PriceResolver,
	orders OrderRepository,
	items OrderItemRepository,
	sequences SequenceRepository,
	logger *zap.Logger,
	numberPrefix string,
) *OrderService {
	return &OrderService{
		tx:           tx,
		clients:      clients,
		products:     products,
		actors:       actors,
		prices:       prices,
		orders:       orders,
		items:        items,
		sequences:    sequences,
		logger:       logger,
		numberPrefix: numberPrefix,
		now:          time.Now,
	}
}

// CreateOrder validates and prices the order, then writes header, items and
// number in one transaction. Nothing touches the database for writing until
// every line is priced.
func (s *OrderService) CreateOrder(ctx context.Context, vendor domain.Identity, in CreateOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperrors.NewValidationError("order must contain at least one item", apperrors.ValidationDetail{
			Field:   "items",
			Message: "order must contain at least one item",
		})
	}
	if !in.PaymentMethod.Valid() {
		return nil, apperrors.NewValidationError("invalid payment method", apperrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: fmt.Sprintf("unknown payment method %q", in.PaymentMethod),
		})
	}
	if in.SaleChannel == "" {
		in.SaleChannel = domain.ChannelExternal
	}
	if !in.SaleChannel.Valid() {
		return nil, apperrors.NewValidationError("invalid sale channel", apperrors.ValidationDetail{
			Field:   "saleChannel",
			Message: fmt.Sprintf("unknown sale channel %q", in.SaleChannel),
		})
	}
	if in.Coordinates != nil && !in.Coordinates.Valid() {
		return nil, apperrors.NewValidationError("invalid coordinates", apperrors.ValidationDetail{
			Field:   "coordinates",
			Message: "latitude must be within [-90, 90] and longitude within [-180, 180]",
		})
	}

	actor, err := s.actors.FindActor(ctx, vendor.UserID, domain.RoleVendor)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewForbiddenError(fmt.Sprintf("vendor %d is not registered", vendor.UserID))
		}
		return nil, err
	}
	if !actor.IsActive() {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("vendor %d is inactive", vendor.UserID))
	}

	client, err := s.loadClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}

	if err := s.checkProducts(ctx, in.Items); err != nil {
		return nil, err
	}

	lines, err := s.priceLines(ctx, *client.ClientTypeID, in)
	if err != nil {
		return nil, err
	}

	totals, items, err := pricing.ComputeTotals(lines)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		VendorID:      vendor.UserID,
		ClientID:      client.ID,
		PaymentMethod: in.PaymentMethod,
		SaleChannel:   in.SaleChannel,
		Coordinates:   in.Coordinates,
		Observations:  in.Observations,
		Totals:        totals,
		State:         domain.OrderPendingApproval,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		now := s.now()
		seq, err := s.sequences.Next(ctx, tx, now)
		if err != nil {
			return err
		}
		order.Number = domain.FormatOrderNumber(s.numberPrefix, now, seq)

		order.ID, err = s.orders.Insert(ctx, tx, order)
		if err != nil {
			return err
		}

		order.Items = make([]domain.OrderItem, 0, len(items))
		for _, item := range items {
			item.OrderID = order.ID
			item.ID, err = s.items.Insert(ctx, tx, item)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		order.CreatedAt = now
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		s.logger.Warn("order transaction failed", zap.Int64("clientId", in.ClientID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.Int64("orderId", order.ID),
		zap.String("number", order.Number),
		zap.Int64("vendorId", vendor.UserID),
		zap.Int64("clientId", client.ID),
		zap.String("total", order.Totals.Total.StringFixed(2)),
		zap.Int("itemCount", len(order.Items)),
	)

	return order, nil
}

func (s *OrderService) loadClient(ctx context.Context, clientID int64) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, apperrors.NewValidationError("client is inactive", apperrors.ValidationDetail{
			Field:   "clientId",
			Message: fmt.Sprintf("client %d is inactive", clientID),
		})
	}
	if client.ClientTypeID == nil {
		return nil, apperrors.NewValidationError("client has no client type", apperrors.ValidationDetail{
			Field:   "clientId",
			Message: fmt.Sprintf("client %d has no client type assigned, prices cannot be resolved", clientID),
		})
	}
	return client, nil
}

func (s *OrderService) checkProducts(ctx context.Context, items []ItemInput) error {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	var details []apperrors.ValidationDetail
	for i, it := range items {
		field := fmt.Sprintf("items[%d].productId", i)
		p, ok := byID[it.ProductID]
		switch {
		case !ok:
			details = append(details, apperrors.ValidationDetail{Field: field, Message: fmt.Sprintf("product %d does not exist", it.ProductID)})
		case !p.IsActive:
			details = append(details, apperrors.ValidationDetail{Field: field, Message: fmt.Sprintf("product %d is inactive", it.ProductID)})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("order contains unavailable products", details...)
	}
	return nil
}

// priceLines resolves every line in submission order. Override client types
// are checked once each.
func (s *OrderService) priceLines(ctx context.Context, defaultType int64, in CreateOrderInput) ([]pricing.LineInput, error) {
	checked := map[int64]bool{defaultType: true}
	lines := make([]pricing.LineInput, 0, len(in.Items))

	for i, it := range in.Items {
		clientTypeID := defaultType
		if it.ClientTypeID != nil {
			clientTypeID = *it.ClientTypeID
		}

		if !checked[clientTypeID] {
			ct, err := s.clients.FindClientType(ctx, clientTypeID)
			if _, ok := apperrors.IsNotFoundError(err); ok || (err == nil && !ct.IsActive) {
				return nil, apperrors.NewValidationError("unknown client type", apperrors.ValidationDetail{
					Field:   fmt.Sprintf("items[%d].clientTypeId", i),
					Message: fmt.Sprintf("client type %d does not exist", clientTypeID),
				})
			}
			if err != nil {
				return nil, err
			}
			checked[clientTypeID] = true
		}

		quote, err := s.prices.ResolvePrice(ctx, it.ProductID, clientTypeID, in.PaymentMethod, it.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pricing.LineFromQuote(*quote))
	}

	return lines, nil
}

// GetOrder loads an order with its items. Vendors and clients only see their
// own orders.
func (s *OrderService) GetOrder(ctx context.Context, viewer domain.Identity, id int64) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch viewer.Role {
	case domain.RoleVendor:
		if order.VendorID != viewer.UserID {
			return nil, apperrors.NewForbiddenError("order belongs to another vendor")
		}
	case domain.RoleClient:
		if order.ClientID != viewer.UserID {
			return nil, apperrors.NewForbiddenError("order belongs to another client")
		}
	}

	items, err := s.items.FindByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ClientHistory lists the client's latest orders for evaluators weighing a
// new one.
func (s *OrderService) ClientHistory(ctx context.Context, clientID int64) ([]domain.Order, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.orders.ListByClient(ctx, clientID, ClientHistoryLimit)
}
