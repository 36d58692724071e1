package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.True(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 5*time.Second, cfg.Automation.DedupCooldown())
	assert.Equal(t, 15*time.Second, cfg.Automation.Timeout())
	assert.Equal(t, time.Minute, cfg.SLA.MonitorInterval())
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_MIGRATIONS_DIR", "db/migrations")
	t.Setenv("AUTOMATION_DEDUP_COOLDOWN_MS", "2500")
	t.Setenv("SLA_MONITOR_INTERVAL_SECONDS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "db/migrations", cfg.Postgres.MigrationsDir)
	assert.Equal(t, 2500*time.Millisecond, cfg.Automation.DedupCooldown())
	assert.Equal(t, 10*time.Second, cfg.SLA.MonitorInterval())
}

func TestDurationGuardsRejectNonPositiveValues(t *testing.T) {
	assert.Equal(t, 5*time.Second, AutomationConfig{DedupCooldownMS: 0}.DedupCooldown())
	assert.Equal(t, 15*time.Second, AutomationConfig{TimeoutSeconds: -1}.Timeout())
	assert.Equal(t, time.Minute, SLAConfig{MonitorIntervalSeconds: 0}.MonitorInterval())
	assert.Equal(t, time.Duration(0), AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
}
