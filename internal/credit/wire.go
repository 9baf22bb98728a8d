package credit

import (
	"database/sql"

	"go.uber.org/zap"

	clientrepo "preventa/internal/client/repository"
	"preventa/internal/config"
	"preventa/internal/infrastructure/mysql"
)

type Module struct {
	Ledger     *Ledger
	Service    *Service
	Controller *Controller
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Module {
	clients := clientrepo.NewMySQLClientRepository(db)
	history := NewMySQLHistoryRepository(db)
	log := logger.Named("credit")

	ledger := NewLedger(clients, history, log)
	svc := NewService(mysql.NewTransactor(db, cfg.Order.TxTimeout), ledger, clients, history, log)

	return &Module{
		Ledger:     ledger,
		Service:    svc,
		Controller: NewController(svc, logger),
	}
}
