package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		chdirTemp(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ims", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "ims", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
		assert.Equal(t, 6379, cfg.Redis.Port)
		assert.True(t, cfg.Event.IdempotencyEnabled)
		assert.True(t, cfg.Event.JournalEnabled)
		assert.Equal(t, 24*time.Hour, cfg.Event.IdempotencyTTL)
		assert.Equal(t, BackendMemory, cfg.Event.IdempotencyBackend)
		assert.Equal(t, "Warehouse", cfg.Inventory.DefaultLocation)
		assert.True(t, cfg.Inventory.RequireWithdrawable)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, "*/15 * * * *", cfg.Scheduler.ReconcileSchedule)
		assert.Equal(t, "0 6 * * *", cfg.Scheduler.ReportSchedule)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "ims", cfg.Telemetry.ServiceName)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("environment overrides", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("IMS_DATABASE_DRIVER", "sqlite")
		t.Setenv("IMS_DATABASE_SQLITE_PATH", "/tmp/ims-test.db")
		t.Setenv("IMS_EVENT_IDEMPOTENCY_BACKEND", "redis")
		t.Setenv("IMS_EVENT_IDEMPOTENCY_TTL", "2h")
		t.Setenv("IMS_INVENTORY_REQUIRE_WITHDRAWABLE", "false")
		t.Setenv("IMS_SCHEDULER_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "/tmp/ims-test.db", cfg.Database.SQLitePath)
		assert.Equal(t, BackendRedis, cfg.Event.IdempotencyBackend)
		assert.Equal(t, 2*time.Hour, cfg.Event.IdempotencyTTL)
		assert.False(t, cfg.Inventory.RequireWithdrawable)
		assert.False(t, cfg.Scheduler.Enabled)
	})

	t.Run("reads env file named by IMS_ENV_FILE", func(t *testing.T) {
		dir := chdirTemp(t)
		envFile := filepath.Join(dir, "test.env")
		require.NoError(t, os.WriteFile(envFile, []byte("IMS_APP_NAME=ims-from-dotenv\n"), 0o600))
		t.Setenv("IMS_ENV_FILE", envFile)
		t.Cleanup(func() { _ = os.Unsetenv("IMS_APP_NAME") })

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "ims-from-dotenv", cfg.App.Name)
	})

	t.Run("reads config.toml", func(t *testing.T) {
		dir := chdirTemp(t)
		toml := `
[database]
driver = "sqlite"

[scheduler]
reconcile_schedule = "@hourly"

[inventory]
default_location = "Dock-7"
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o600))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "@hourly", cfg.Scheduler.ReconcileSchedule)
		assert.Equal(t, "Dock-7", cfg.Inventory.DefaultLocation)
	})

	t.Run("rejects invalid cron schedule", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("IMS_SCHEDULER_REPORT_SCHEDULE", "every day")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduler.report_schedule")
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("IMS_DATABASE_DRIVER", "oracle")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("idle conns above open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = cfg.Database.MaxOpenConns + 1
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires postgres password and tls", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		assert.Error(t, cfg.validate())

		cfg.Database.Password = "secret"
		assert.Error(t, cfg.validate())

		cfg.Database.SSLMode = "require"
		assert.NoError(t, cfg.validate())
		assert.True(t, cfg.IsProduction())
	})

	t.Run("sampling ratio bounds", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})

	t.Run("bad idempotency backend", func(t *testing.T) {
		cfg := base()
		cfg.Event.IdempotencyBackend = "memcached"
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "ims", Password: "p@ss", DBName: "stock", SSLMode: "disable"}

	assert.Equal(t, "postgres://ims:p%40ss@db:5433/stock?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
