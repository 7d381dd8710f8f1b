package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bizgrid-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "bizgrid", cfg.Database.DBName)
	assert.Empty(t, cfg.Database.MigrationsPath)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 16, cfg.Governance.MaxReportingDepth)
	assert.Equal(t, 10*time.Minute, cfg.Governance.TaxRateCacheTTL)
	assert.False(t, cfg.Governance.BackfillSchedule)
	assert.Equal(t, 200*time.Millisecond, cfg.Log.SlowSQLThreshold)
	assert.Equal(t, "bizgrid-backend", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BIZ_APP_PORT", "9000")
	t.Setenv("BIZ_DATABASE_HOST", "db.internal")
	t.Setenv("BIZ_DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("BIZ_REDIS_ENABLED", "true")
	t.Setenv("BIZ_GOVERNANCE_MAX_REPORTING_DEPTH", "8")
	t.Setenv("BIZ_GOVERNANCE_TAX_RATE_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 8, cfg.Governance.MaxReportingDepth)
	assert.Equal(t, 30*time.Second, cfg.Governance.TaxRateCacheTTL)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[app]
name = "grid"

[database]
dbname = "grid_db"
max_open_conns = 10
max_idle_conns = 2

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("BIZ_LOG_FORMAT", "json")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "grid", cfg.App.Name)
	assert.Equal(t, "grid_db", cfg.Database.DBName)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "idle exceeds open", mutate: func(c *Config) { c.Database.MaxIdleConns = 100 }, wantErr: "max_idle_conns"},
		{name: "depth too large", mutate: func(c *Config) { c.Governance.MaxReportingDepth = 65 }, wantErr: "max_reporting_depth"},
		{name: "backfill hour", mutate: func(c *Config) { c.Governance.BackfillHour = 24 }, wantErr: "backfill_hour"},
		{name: "sampling ratio", mutate: func(c *Config) { c.Telemetry.SamplingRatio = 2 }, wantErr: "sampling_ratio"},
		{name: "production short secret", mutate: func(c *Config) {
			c.App.Env = "production"
			c.JWT.Secret = "short"
		}, wantErr: "jwt.secret"},
		{name: "production ssl disabled", mutate: func(c *Config) {
			c.App.Env = "production"
			c.JWT.Secret = "0123456789abcdef0123456789abcdef"
			c.Database.Password = "pw"
		}, wantErr: "sslmode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5433, User: "u", Password: "p@ss word", DBName: "db", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p%40ss%20word@h:5433/db?sslmode=require", d.DSN())
}
