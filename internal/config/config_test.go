package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join("instance", "tasks.db"), cfg.DatabaseDSN())
	assert.Equal(t, 24*time.Hour, cfg.Session.Lifetime.Duration)
	assert.Equal(t, "127.0.0.1:8000", cfg.HTTPAddr())
	assert.Empty(t, cfg.App.TrustedProxies)
}

func TestLoad_TrustedProxiesFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.1, 192.168.0.0/16 ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.App.TrustedProxies)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9090
log_level = "debug"

[database]
driver = "postgres"
dsn = "postgres://tasks:secret@db:5432/tasks?sslmode=disable"

[session]
lifetime = "2h"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9191")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.App.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://tasks:secret@db:5432/tasks?sslmode=disable", cfg.DatabaseDSN())
	assert.Equal(t, 2*time.Hour, cfg.Session.Lifetime.Duration)
}

func TestLoad_DatabaseURLOverridesDSN(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DATABASE_URL", "/tmp/custom.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DatabaseDSN())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config failed")
}

func TestValidate_PostgresRequiresDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Driver = DriverPostgres

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Driver = DriverMySQL
	cfg.Database.MySQL.User = "tasks"
	cfg.Database.MySQL.Password = "pw"
	cfg.Database.MySQL.Host = "db"

	dsn := cfg.DatabaseDSN()
	assert.True(t, strings.HasPrefix(dsn, "tasks:pw@tcp(db:3306)/taskmanager?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestFallbackDatabasePath(t *testing.T) {
	cfg := defaultConfig()
	cfg.App.InstanceDir = "/var/lib/taskmanager"
	assert.Equal(t, "/var/lib/taskmanager/backup_tasks.db", cfg.FallbackDatabasePath())
}
