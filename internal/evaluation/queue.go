package evaluation

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"preventa/internal/domain"
)

type QueueRepository interface {
	ListPending(ctx context.Context) ([]PendingOrder, error)
	Tally(ctx context.Context, evaluatorID int64, from, to time.Time, includeEscalated bool) (Tally, error)
}

// QueueItem is a pending order with checks computed for the viewer.
type QueueItem struct {
	PendingOrder
	Checks   domain.Checks
	Priority domain.Priority
}

// Stats summarises the viewer's day. ApprovalRate is the percentage of all
// the viewer's evaluations that approved the order, to one decimal.
type Stats struct {
	PendingToday   int
	EvaluatedToday int
	ApprovalRate   decimal.Decimal
}

type Queue struct {
	repo   QueueRepository
	staff  StaffRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewQueue(repo QueueRepository, staff StaffRepository, logger *zap.Logger) *Queue {
	return &Queue{
		repo:   repo,
		staff:  staff,
		logger: logger,
		now:    time.Now,
	}
}

// Pending lists the orders waiting for the viewer, most troubled first and
// oldest first within a priority. Checks run against the viewer's own zone
// and ceiling on every call and are never stored. Escalated orders are only
// shown to supervisors.
func (q *Queue) Pending(ctx context.Context, viewer domain.Identity) ([]QueueItem, error) {
	evaluator, err := loadEvaluator(ctx, q.staff, viewer)
	if err != nil {
		return nil, err
	}

	pending, err := q.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	if viewer.Role != domain.RoleSupervisor {
		pending = lo.Reject(pending, func(p PendingOrder, _ int) bool { return p.Escalated })
	}

	items := lo.Map(pending, func(p PendingOrder, _ int) QueueItem {
		checks := domain.RunChecks(p.Vendor, p.Client, *evaluator, p.Order.Totals.Total)
		return QueueItem{
			PendingOrder: p,
			Checks:       checks,
			Priority:     domain.PriorityFromChecks(checks),
		}
	})

	slices.SortStableFunc(items, func(a, b QueueItem) int {
		if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
			return c
		}
		return a.Order.CreatedAt.Compare(b.Order.CreatedAt)
	})

	q.logger.Debug("pending queue computed", zap.Int64("viewerId", viewer.UserID), zap.Int("count", len(items)))
	return items, nil
}

// Stats counts today's pending orders the viewer can act on and the viewer's
// own evaluations. Today is the server's local calendar day.
func (q *Queue) Stats(ctx context.Context, viewer domain.Identity) (Stats, error) {
	if _, err := loadEvaluator(ctx, q.staff, viewer); err != nil {
		return Stats{}, err
	}

	now := q.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tally, err := q.repo.Tally(ctx, viewer.UserID, from, from.AddDate(0, 0, 1), viewer.Role == domain.RoleSupervisor)
	if err != nil {
		return Stats{}, err
	}

	rate := decimal.Zero
	if tally.Evaluated > 0 {
		rate = decimal.NewFromInt(int64(tally.Approved)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(tally.Evaluated))).
			Round(1)
	}

	return Stats{
		PendingToday:   tally.PendingToday,
		EvaluatedToday: tally.EvaluatedToday,
		ApprovalRate:   rate,
	}, nil
}
