package credit

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"preventa/internal/domain"
)

type ClientRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Client, error)
	UpdateCreditUsed(ctx context.Context, tx *sql.Tx, id int64, used decimal.Decimal) error
}

type HistoryRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, movement domain.CreditMovement) (int64, error)
	ListByClient(ctx context.Context, clientID int64, limit int) ([]domain.CreditMovement, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}
