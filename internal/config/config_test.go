package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "localhost"
dbname = "appointments"

[provider_service]
url = "http://localhost:8081"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 15, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 5, cfg.Sweeper.IntervalMinutes)
	assert.Equal(t, 30, cfg.Sweeper.PendingExpiryMinutes)
	assert.Equal(t, 14, cfg.Sweeper.WaitlistHorizonDays)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Sweeper.Enabled)
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "db"
port = 5432
user = "svc"
password = "secret"
dbname = "appointments"
sslmode = "require"

[redis]
enabled = true
addr = "redis:6379"

[metrics]
enabled = true
service_name = "appointment-service"

[provider_service]
url = "http://provider:8081"
timeout = 5

[notify_service]
url = "http://notify:8082"

[sweeper]
enabled = true
interval_minutes = 10
pending_expiry_minutes = 45
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "host=db port=5432 user=svc password=secret dbname=appointments sslmode=require",
		cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Sweeper.Enabled)
	assert.Equal(t, 10, cfg.Sweeper.IntervalMinutes)
	assert.Equal(t, 45, cfg.Sweeper.PendingExpiryMinutes)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "localhost"
`)

	_, err := Load(path)
	assert.Error(t, err)
}
