package credit

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"preventa/internal/domain"
)

// Ledger mutates client credit inside a caller owned transaction. The client
// row is locked before the balance is read, so check and update are atomic.
type Ledger struct {
	clients ClientRepository
	history HistoryRepository
	logger  *zap.Logger
}

func NewLedger(clients ClientRepository, history HistoryRepository, logger *zap.Logger) *Ledger {
	return &Ledger{
		clients: clients,
		history: history,
		logger:  logger,
	}
}

// Movement describes a reserve or release request.
type Movement struct {
	ClientID    int64
	Amount      decimal.Decimal
	Reason      string
	ReferenceID string
	Actor       domain.Identity
}

func (l *Ledger) Reserve(ctx context.Context, tx *sql.Tx, m Movement) (*domain.CreditMovement, error) {
	return l.apply(ctx, tx, m, (*domain.Client).Reserve)
}

func (l *Ledger) Release(ctx context.Context, tx *sql.Tx, m Movement) (*domain.CreditMovement, error) {
	return l.apply(ctx, tx, m, (*domain.Client).Release)
}

type mutation func(c *domain.Client, amount decimal.Decimal, reason string, actor domain.Identity) (domain.CreditMovement, error)

func (l *Ledger) apply(ctx context.Context, tx *sql.Tx, m Movement, mutate mutation) (*domain.CreditMovement, error) {
	client, err := l.clients.FindByIDForUpdate(ctx, tx, m.ClientID)
	if err != nil {
		return nil, err
	}

	movement, err := mutate(client, m.Amount, m.Reason, m.Actor)
	if err != nil {
		l.logger.Info("credit movement refused",
			zap.Int64("clientId", m.ClientID),
			zap.String("amount", m.Amount.StringFixed(2)),
			zap.String("available", client.CreditAvailable().StringFixed(2)),
			zap.Error(err),
		)
		return nil, err
	}
	movement.ReferenceID = m.ReferenceID

	if err := l.clients.UpdateCreditUsed(ctx, tx, client.ID, client.CreditUsed); err != nil {
		return nil, err
	}

	id, err := l.history.Insert(ctx, tx, movement)
	if err != nil {
		return nil, err
	}
	movement.ID = id

	l.logger.Info("credit movement recorded",
		zap.Int64("clientId", m.ClientID),
		zap.String("kind", string(movement.Kind)),
		zap.String("amount", m.Amount.StringFixed(2)),
		zap.String("newUsed", movement.NewUsed.StringFixed(2)),
		zap.String("referenceId", m.ReferenceID),
	)

	return &movement, nil
}
