package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"preventa/internal/domain"
	"preventa/internal/errors"
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type MySQLClientRepository struct {
	db *sql.DB
}

func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}

const selectClient = `
	SELECT id, code, tax_id, business_name, trade_name, client_type_id, is_active,
	       credit_limit, credit_used, outstanding_debt, is_delinquent, days_delinquent,
	       department, province, district, updated_at
	FROM clients
	WHERE id = ?`

func (r *MySQLClientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	return scanClient(ctx, r.db, selectClient, id)
}

// FindByIDForUpdate locks the client row until tx ends. Every credit mutation
// goes through this lock.
func (r *MySQLClientRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Client, error) {
	return scanClient(ctx, tx, selectClient+" FOR UPDATE", id)
}

func scanClient(ctx context.Context, q queryer, query string, id int64) (*domain.Client, error) {
	var (
		c            domain.Client
		clientTypeID sql.NullInt64
	)
	err := q.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Code, &c.TaxID, &c.BusinessName, &c.TradeName, &clientTypeID, &c.IsActive,
		&c.CreditLimit, &c.CreditUsed, &c.OutstandingDebt, &c.IsDelinquent, &c.DaysDelinquent,
		&c.Zone.Department, &c.Zone.Province, &c.Zone.District, &c.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("client with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying client by id: %w", err)
	}

	if clientTypeID.Valid {
		c.ClientTypeID = &clientTypeID.Int64
	}
	return &c, nil
}

func (r *MySQLClientRepository) UpdateCreditUsed(ctx context.Context, tx *sql.Tx, id int64, used decimal.Decimal) error {
	result, err := tx.ExecContext(ctx, `UPDATE clients SET credit_used = ? WHERE id = ?`, used, id)
	if err != nil {
		return fmt.Errorf("updating client credit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	// MySQL reports 0 affected rows when the value did not change.
	if rowsAffected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE id = ?)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("checking client existence: %w", err)
		}
		if !exists {
			return errors.NewNotFoundError(fmt.Sprintf("client with id %d not found", id))
		}
	}

	return nil
}

func (r *MySQLClientRepository) FindClientType(ctx context.Context, id int64) (*domain.ClientType, error) {
	var ct domain.ClientType
	err := r.db.QueryRowContext(ctx, `SELECT id, name, is_active FROM client_types WHERE id = ?`, id).
		Scan(&ct.ID, &ct.Name, &ct.IsActive)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("client type with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying client type by id: %w", err)
	}

	return &ct, nil
}
