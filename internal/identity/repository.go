package identity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"preventa/internal/domain"
	"preventa/internal/errors"
)

// MySQLRepository reads vendors, evaluators and supervisors from the single
// actors table.
type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) FindStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	query := `
		SELECT id, role, display_name, is_active, approval_ceiling, department, province, district
		FROM actors
		WHERE id = ?
	`

	var (
		s                              domain.Staff
		ceiling                        decimal.NullDecimal
		department, province, district sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Role, &s.Name, &s.Active, &ceiling, &department, &province, &district,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("actor with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying actor by id: %w", err)
	}

	s.Zone = domain.Zone{Department: department.String, Province: province.String, District: district.String}
	if ceiling.Valid && (s.Role == domain.RoleEvaluator || s.Role == domain.RoleSupervisor) {
		s.Authority = &domain.Authority{Ceiling: ceiling.Decimal}
	}

	return &s, nil
}

// FindActor loads id and requires it to hold role.
func (r *MySQLRepository) FindActor(ctx context.Context, id int64, role domain.Role) (domain.Actor, error) {
	s, err := r.FindStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Role != role {
		return nil, errors.NewNotFoundError(fmt.Sprintf("%s with id %d not found", role, id))
	}
	return *s, nil
}
