package pricing

import (
	"database/sql"

	"go.uber.org/zap"

	"preventa/internal/config"
)

type Module struct {
	Resolver   *Resolver
	Controller *Controller
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Module {
	repo := NewCachedRepository(NewMySQLRepository(db), cfg.Pricing.CacheTTL)
	resolver := NewResolver(repo, logger.Named("pricing"))

	return &Module{
		Resolver:   resolver,
		Controller: NewController(resolver, logger),
	}
}
