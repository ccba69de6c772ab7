package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/config"
	"taskmanager/internal/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("INSTANCE_DIR", t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Auth.BcryptCost = 4
	return cfg
}

func TestBuild_StatelessSessionsWithoutRedis(t *testing.T) {
	cfg := testConfig(t)

	app, err := Build(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Equal(t, config.DriverSQLite, app.DBDriver)
	assert.False(t, app.DBFallback)
	assert.Nil(t, app.Redis)
	assert.False(t, app.Sessions.Stateful())
	assert.NotNil(t, app.Metrics)
	assert.NotNil(t, app.LoginLimiter)
}

func TestBuild_RedisRegistry(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = s.Addr()

	app, err := Build(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.NotNil(t, app.Redis)
	assert.True(t, app.Sessions.Stateful())
}

func TestBuild_UnreachableRedisDegrades(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	addr := s.Addr()
	s.Close()

	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr

	app, err := Build(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Nil(t, app.Redis)
	assert.False(t, app.Sessions.Stateful())
}
