package evaluation

import (
	"database/sql"

	"go.uber.org/zap"

	clientrepo "preventa/internal/client/repository"
	"preventa/internal/config"
	"preventa/internal/identity"
	"preventa/internal/infrastructure/mysql"
	orderrepo "preventa/internal/order/repository"
)

type Module struct {
	Service    *Service
	UseCase    *UseCase
	Queue      *Queue
	Controller *Controller
}

// NewModule wires the evaluation workflow. ledger reserves credit inside the
// evaluation transaction.
func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger, ledger CreditReserver, events EventPublisher) *Module {
	log := logger.Named("evaluation")
	repo := NewMySQLRepository(db)
	staff := identity.NewMySQLRepository(db)

	svc := NewService(
		mysql.NewTransactor(db, cfg.Order.TxTimeout),
		orderrepo.NewMySQLOrderRepository(db),
		clientrepo.NewMySQLClientRepository(db),
		staff,
		repo,
		ledger,
		log,
	)
	uc := NewUseCase(svc, events, log, cfg.Order.MaxRetryAttempts)
	queue := NewQueue(repo, staff, log)

	return &Module{
		Service:    svc,
		UseCase:    uc,
		Queue:      queue,
		Controller: NewController(uc, queue, logger),
	}
}
