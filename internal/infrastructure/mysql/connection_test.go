package mysql

import (
	"testing"
	"time"

	drv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preventa/internal/config"
)

func TestDSN_SessionInUTC(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{User: "preventa", Password: "secret", Host: "db", Port: 3306, Name: "preventa"})

	cfg, err := drv.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, time.UTC, cfg.Loc)
	assert.Equal(t, "'+00:00'", cfg.Params["time_zone"])
}
