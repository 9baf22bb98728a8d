package evaluation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"preventa/internal/domain"
	apperrors "preventa/internal/errors"
	"preventa/internal/infrastructure/mysql"
)

// PendingOrder is one queue row: the order with the parties the checks need.
type PendingOrder struct {
	Order     domain.Order
	Client    domain.Client
	Vendor    domain.Staff
	Escalated bool
}

// Tally is the raw evaluation activity of one evaluator.
type Tally struct {
	PendingToday   int
	EvaluatedToday int
	Approved       int
	Evaluated      int
}

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// Insert stores the final decision. evaluations.order_id is unique, so a
// second decision on the same order fails even if the state guard was missed.
func (r *MySQLRepository) Insert(ctx context.Context, tx *sql.Tx, e *domain.Evaluation) (int64, error) {
	query := `
		INSERT INTO evaluations (order_id, vendor_active, client_in_zone, amount_within_limit,
		                         client_not_delinquent, decision, rejection_reason, observations,
		                         evaluator_id, evaluator_role, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		e.OrderID, e.Checks.VendorActive, e.Checks.ClientInZone, e.Checks.AmountWithinLimit,
		e.Checks.ClientNotDelinquent, string(e.Decision), nullString(e.RejectionReason), nullString(e.Observations),
		e.Evaluator.UserID, string(e.Evaluator.Role), e.DecidedAt.UTC(),
	)
	if mysql.IsDuplicateEntry(err) {
		return 0, apperrors.NewAlreadyEvaluatedError(fmt.Sprintf("order %d already has an evaluation", e.OrderID))
	}
	if err != nil {
		return 0, fmt.Errorf("inserting evaluation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return id, nil
}

// InsertEscalation stores the hand-off to a supervisor. An order is escalated
// at most once.
func (r *MySQLRepository) InsertEscalation(ctx context.Context, tx *sql.Tx, e *domain.Escalation) (int64, error) {
	query := `
		INSERT INTO order_escalations (order_id, vendor_active, client_in_zone, amount_within_limit,
		                               client_not_delinquent, escalated_by, escalated_by_role, observations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		e.OrderID, e.Checks.VendorActive, e.Checks.ClientInZone, e.Checks.AmountWithinLimit,
		e.Checks.ClientNotDelinquent, e.EscalatedBy.UserID, string(e.EscalatedBy.Role),
		nullString(e.Observations), e.CreatedAt.UTC(),
	)
	if mysql.IsDuplicateEntry(err) {
		return 0, apperrors.NewConflictError(fmt.Sprintf("order %d is already escalated", e.OrderID))
	}
	if err != nil {
		return 0, fmt.Errorf("inserting escalation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return id, nil
}

// IsEscalated reports whether the order was already handed to a supervisor.
func (r *MySQLRepository) IsEscalated(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error) {
	var escalated bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_escalations WHERE order_id = ?)`, orderID,
	).Scan(&escalated)
	if err != nil {
		return false, fmt.Errorf("checking escalation: %w", err)
	}
	return escalated, nil
}

// Tally counts the activity behind the evaluator dashboard. Pending orders
// are those created within [from, to); escalated ones are left out unless
// includeEscalated is set.
func (r *MySQLRepository) Tally(ctx context.Context, evaluatorID int64, from, to time.Time, includeEscalated bool) (Tally, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders o
			 WHERE o.state = ? AND o.created_at >= ? AND o.created_at < ?
			   AND (? OR NOT EXISTS (SELECT 1 FROM order_escalations e WHERE e.order_id = o.id))),
			(SELECT COUNT(*) FROM evaluations WHERE evaluator_id = ? AND decided_at >= ? AND decided_at < ?),
			(SELECT COUNT(*) FROM evaluations WHERE evaluator_id = ? AND decision = ?),
			(SELECT COUNT(*) FROM evaluations WHERE evaluator_id = ?)
	`

	var t Tally
	err := r.db.QueryRowContext(ctx, query,
		string(domain.OrderPendingApproval), from.UTC(), to.UTC(), includeEscalated,
		evaluatorID, from.UTC(), to.UTC(),
		evaluatorID, string(domain.DecisionApproved),
		evaluatorID,
	).Scan(&t.PendingToday, &t.EvaluatedToday, &t.Approved, &t.Evaluated)
	if err != nil {
		return Tally{}, fmt.Errorf("querying evaluator tally: %w", err)
	}
	return t, nil
}

func (r *MySQLRepository) ListPending(ctx context.Context) ([]PendingOrder, error) {
	query := `
		SELECT o.id, o.order_number, o.vendor_id, o.client_id, o.payment_method, o.sale_channel,
		       o.subtotal, o.discount_total, o.total, o.state, o.created_at,
		       c.business_name, c.trade_name, c.tax_id, c.is_active, c.credit_limit, c.credit_used,
		       c.outstanding_debt, c.is_delinquent, c.days_delinquent, c.department, c.province, c.district,
		       a.role, a.display_name, a.is_active,
		       EXISTS (SELECT 1 FROM order_escalations e WHERE e.order_id = o.id)
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		JOIN actors a ON a.id = o.vendor_id
		WHERE o.state = ?
		ORDER BY o.created_at, o.id
	`

	rows, err := r.db.QueryContext(ctx, query, string(domain.OrderPendingApproval))
	if err != nil {
		return nil, fmt.Errorf("querying pending orders: %w", err)
	}
	defer rows.Close()

	pending := []PendingOrder{}
	for rows.Next() {
		var (
			p                              PendingOrder
			tradeName                      sql.NullString
			department, province, district sql.NullString
		)
		if err := rows.Scan(
			&p.Order.ID, &p.Order.Number, &p.Order.VendorID, &p.Order.ClientID, &p.Order.PaymentMethod, &p.Order.SaleChannel,
			&p.Order.Totals.Subtotal, &p.Order.Totals.DiscountTotal, &p.Order.Totals.Total, &p.Order.State, &p.Order.CreatedAt,
			&p.Client.BusinessName, &tradeName, &p.Client.TaxID, &p.Client.IsActive, &p.Client.CreditLimit, &p.Client.CreditUsed,
			&p.Client.OutstandingDebt, &p.Client.IsDelinquent, &p.Client.DaysDelinquent, &department, &province, &district,
			&p.Vendor.Role, &p.Vendor.Name, &p.Vendor.Active,
			&p.Escalated,
		); err != nil {
			return nil, fmt.Errorf("scanning pending order row: %w", err)
		}
		p.Client.ID = p.Order.ClientID
		p.Client.TradeName = tradeName.String
		p.Client.Zone = domain.Zone{Department: department.String, Province: province.String, District: district.String}
		p.Vendor.ID = p.Order.VendorID
		pending = append(pending, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending order rows: %w", err)
	}

	return pending, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
