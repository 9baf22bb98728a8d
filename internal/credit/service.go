package credit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"preventa/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type Service struct {
	tx      Transactor
	ledger  *Ledger
	clients ClientRepository
	history HistoryRepository
	logger  *zap.Logger
}

func NewService(
	tx Transactor,
	ledger *Ledger,
	clients ClientRepository,
	history HistoryRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		tx:      tx,
		ledger:  ledger,
		clients: clients,
		history: history,
		logger:  logger,
	}
}

// Reserve runs a standalone reservation in its own transaction.
func (s *Service) Reserve(ctx context.Context, m Movement) (*domain.CreditMovement, error) {
	var movement *domain.CreditMovement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		movement, err = s.ledger.Reserve(ctx, tx, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// Release frees credit, typically after a client payment.
func (s *Service) Release(ctx context.Context, m Movement) (*domain.CreditMovement, error) {
	var movement *domain.CreditMovement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		movement, err = s.ledger.Release(ctx, tx, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

type Summary struct {
	Client         domain.Client
	Available      decimal.Decimal
	UsedPercentage decimal.Decimal
	Status         domain.CreditStatus
	CanUseCredit   bool
	Message        string
}

func (s *Service) Status(ctx context.Context, clientID int64) (*Summary, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	status := client.CreditStatus()
	return &Summary{
		Client:         *client,
		Available:      client.CreditAvailable(),
		UsedPercentage: client.UsedPercentage(),
		Status:         status,
		CanUseCredit:   client.CanUseCredit(),
		Message:        statusMessage(*client, status),
	}, nil
}

func statusMessage(c domain.Client, status domain.CreditStatus) string {
	switch status {
	case domain.CreditBlocked:
		return fmt.Sprintf("credit blocked: %d days overdue", c.DaysDelinquent)
	case domain.CreditDelinquent:
		if c.CanUseCredit() {
			return fmt.Sprintf("overdue debt of %s, limited credit allowed", c.OutstandingDebt.StringFixed(2))
		}
		return fmt.Sprintf("overdue debt of %s, %d days late", c.OutstandingDebt.StringFixed(2), c.DaysDelinquent)
	case domain.CreditWarning:
		return fmt.Sprintf("only %s of credit left", c.CreditAvailable().StringFixed(2))
	default:
		return fmt.Sprintf("%s of credit available", c.CreditAvailable().StringFixed(2))
	}
}

// History returns the newest movements first.
func (s *Service) History(ctx context.Context, clientID int64, limit int) ([]domain.CreditMovement, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.history.ListByClient(ctx, clientID, limit)
}
