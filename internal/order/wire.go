package order

import (
	"database/sql"

	"go.uber.org/zap"

	clientrepo "preventa/internal/client/repository"
	"preventa/internal/config"
	"preventa/internal/identity"
	"preventa/internal/infrastructure/mysql"
	"preventa/internal/order/controller"
	orderrepo "preventa/internal/order/repository"
	"preventa/internal/order/service"
	"preventa/internal/order/usecase"
)

type Module struct {
	Orders     *orderrepo.MySQLOrderRepository
	Items      *orderrepo.MySQLOrderItemRepository
	UseCase    *usecase.CreateOrderUseCase
	Controller *controller.OrderController
}

// NewModule wires order creation. Prices and products come from their own
// modules so the price cache is shared.
func NewModule(
	db *sql.DB,
	cfg *config.Config,
	logger *zap.Logger,
	prices service.PriceResolver,
	products service.ProductRepository,
	events usecase.EventPublisher,
) *Module {
	log := logger.Named("order")
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	itemRepo := orderrepo.NewMySQLOrderItemRepository(db)

	svc := service.NewOrderService(
		mysql.NewTransactor(db, cfg.Order.TxTimeout),
		clientrepo.NewMySQLClientRepository(db),
		products,
		identity.NewMySQLRepository(db),
		prices,
		orderRepo,
		itemRepo,
		orderrepo.NewMySQLSequenceRepository(),
		log,
		cfg.Order.NumberPrefix,
	)

	uc := usecase.NewCreateOrderUseCase(svc, events, log, cfg.Order.MaxRetryAttempts)

	return &Module{
		Orders:     orderRepo,
		Items:      itemRepo,
		UseCase:    uc,
		Controller: controller.NewOrderController(uc, logger),
	}
}
