package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  host: db.internal
  name: preventa_test
order:
  maxRetryAttempts: 5
  numberPrefix: ORD
pricing:
  cacheTTL: 0s
auth:
  jwtSecret: a-very-long-test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "preventa_test", cfg.Database.Name)
	assert.Equal(t, 5, cfg.Order.MaxRetryAttempts)
	assert.Equal(t, "ORD", cfg.Order.NumberPrefix)
	assert.Equal(t, time.Duration(0), cfg.Pricing.CacheTTL)
	assert.Equal(t, 50, cfg.Notification.QueueSize)
	assert.Equal(t, 5*time.Second, cfg.Notification.WriteTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5*time.Second, cfg.Order.TxTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
auth:
  jwtSecret: a-very-long-test-secret
`)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DB_HOST", "mysql")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingSecretFailsValidation(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "PED", cfg.Order.NumberPrefix)
}
