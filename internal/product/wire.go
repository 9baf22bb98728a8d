package product

import (
	"database/sql"

	"go.uber.org/zap"

	"preventa/internal/product/controller"
	"preventa/internal/product/repository"
	"preventa/internal/product/service"
	"preventa/internal/product/usecase"
)

type Module struct {
	Repository *repository.MySQLRepository
	Controller *controller.Controller
}

func NewModule(db *sql.DB, logger *zap.Logger) *Module {
	repo := repository.NewMySQLRepository(db)
	svc := service.NewService(repo)
	uc := usecase.NewSearchUseCase(svc)
	return &Module{
		Repository: repo,
		Controller: controller.NewController(uc, logger.Named("product")),
	}
}
