package credit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	clientrepo "preventa/internal/client/repository"
	"preventa/internal/domain"
	apperrors "preventa/internal/errors"
	"preventa/internal/infrastructure/mysql"
	"preventa/internal/testutil"
)

// Two reservations of 500 against 600 available: exactly one may commit.
func TestLedger_ConcurrentReserve_MySQL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	f := testutil.SeedFixtures(t, db, "1000.00", "400.00")

	clients := clientrepo.NewMySQLClientRepository(db)
	history := NewMySQLHistoryRepository(db)
	svc := NewService(mysql.NewTransactor(db, 5*time.Second), NewLedger(clients, history, zap.NewNop()), clients, history, zap.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), Movement{
				ClientID: f.ClientID, Amount: dec("500"), Reason: "concurrent order", Actor: supervisor,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		_, conflict := apperrors.IsConcurrencyConflictError(err)
		assert.True(t, apperrors.IsInsufficientCredit(err) || conflict, "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	client, err := clients.FindByID(context.Background(), f.ClientID)
	require.NoError(t, err)
	assert.True(t, dec("900").Equal(client.CreditUsed))

	movements, err := history.ListByClient(context.Background(), f.ClientID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.MovementReserve, movements[0].Kind)
	assert.True(t, dec("400").Equal(movements[0].PreviousUsed))
}
