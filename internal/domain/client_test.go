package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "preventa/internal/errors"
)

var systemActor = Identity{UserID: 0, Role: RoleSystem}

func TestClient_CreditAvailable(t *testing.T) {
	c := Client{CreditLimit: dec("1000"), CreditUsed: dec("800")}
	assert.True(t, dec("200").Equal(c.CreditAvailable()))
	assert.True(t, c.CanPurchase(dec("150")))
	assert.True(t, c.CanPurchase(dec("200")))
	assert.False(t, c.CanPurchase(dec("250")))

	over := Client{CreditLimit: dec("100"), CreditUsed: dec("130")}
	assert.True(t, over.CreditAvailable().IsZero())
}

func TestClient_Reserve(t *testing.T) {
	c := Client{ID: 4, CreditLimit: dec("1000"), CreditUsed: dec("400")}

	mv, err := c.Reserve(dec("500"), "order PED-1", systemActor)
	require.NoError(t, err)
	assert.Equal(t, MovementReserve, mv.Kind)
	assert.True(t, dec("400").Equal(mv.PreviousUsed))
	assert.True(t, dec("900").Equal(mv.NewUsed))
	assert.True(t, dec("1000").Equal(mv.NewLimit))
	assert.True(t, dec("900").Equal(c.CreditUsed))

	_, err = c.Reserve(dec("500"), "order PED-2", systemActor)
	assert.True(t, apperrors.IsInsufficientCredit(err))
	assert.True(t, dec("900").Equal(c.CreditUsed))
}

func TestClient_Reserve_RejectsNonPositive(t *testing.T) {
	c := Client{CreditLimit: dec("10")}
	_, err := c.Reserve(decimal.Zero, "noop", systemActor)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestClient_Release_ClampsAtZero(t *testing.T) {
	c := Client{CreditLimit: dec("1000"), CreditUsed: dec("100")}

	mv, err := c.Release(dec("250"), "payment", systemActor)
	require.NoError(t, err)
	assert.True(t, c.CreditUsed.IsZero())
	assert.True(t, dec("100").Equal(mv.PreviousUsed))
	assert.True(t, mv.NewUsed.IsZero())
}

func TestClient_CreditUsedNeverNegative(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	c := Client{CreditLimit: dec("5000")}

	for i := 0; i < 500; i++ {
		amount := decimal.NewFromInt(int64(r.Intn(900) + 1))
		if r.Intn(2) == 0 {
			_, _ = c.Reserve(amount, "r", systemActor)
		} else {
			_, _ = c.Release(amount, "l", systemActor)
		}
		require.False(t, c.CreditUsed.IsNegative())
		require.True(t, c.CreditUsed.LessThanOrEqual(c.CreditLimit))
	}
}

func TestClient_CreditStatus(t *testing.T) {
	tests := []struct {
		name      string
		client    Client
		status    CreditStatus
		canCredit bool
	}{
		{"normal", Client{CreditLimit: dec("1000"), CreditUsed: dec("100")}, CreditNormal, true},
		{"warning below 20 percent", Client{CreditLimit: dec("1000"), CreditUsed: dec("850")}, CreditWarning, true},
		{"debt makes delinquent", Client{CreditLimit: dec("1000"), OutstandingDebt: dec("10")}, CreditDelinquent, true},
		{"delinquent within grace", Client{CreditLimit: dec("1000"), IsDelinquent: true, DaysDelinquent: 15}, CreditDelinquent, true},
		{"delinquent beyond grace", Client{CreditLimit: dec("1000"), IsDelinquent: true, DaysDelinquent: 20}, CreditDelinquent, false},
		{"blocked", Client{CreditLimit: dec("1000"), IsDelinquent: true, DaysDelinquent: 31}, CreditBlocked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.client.CreditStatus())
			assert.Equal(t, tt.canCredit, tt.client.CanUseCredit())
		})
	}
}

func TestClient_UsedPercentage(t *testing.T) {
	assert.True(t, dec("25").Equal(Client{CreditLimit: dec("800"), CreditUsed: dec("200")}.UsedPercentage()))
	assert.True(t, Client{}.UsedPercentage().IsZero())
}
