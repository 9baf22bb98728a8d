package evaluation

import (
	"context"
	"database/sql"

	"preventa/internal/credit"
	"preventa/internal/domain"
)

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type OrderRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
	UpdateState(ctx context.Context, tx *sql.Tx, id int64, state domain.OrderState) error
}

type ClientRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
}

type StaffRepository interface {
	FindStaff(ctx context.Context, id int64) (*domain.Staff, error)
}

type Repository interface {
	Insert(ctx context.Context, tx *sql.Tx, e *domain.Evaluation) (int64, error)
	InsertEscalation(ctx context.Context, tx *sql.Tx, e *domain.Escalation) (int64, error)
	IsEscalated(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error)
}

// CreditReserver reserves credit inside the evaluation transaction.
type CreditReserver interface {
	Reserve(ctx context.Context, tx *sql.Tx, m credit.Movement) (*domain.CreditMovement, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}
