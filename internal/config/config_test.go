package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  host: localhost\n"))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "scholarships", cfg.RabbitMQ.RoutingKey)
	assert.Equal(t, "tracking", cfg.RabbitMQ.EventRoutingKey)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 50, cfg.API.PageSize)
	assert.Equal(t, 3, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Timeout)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "UTC", cfg.Catalog.Timezone)
	assert.Equal(t, 7, cfg.Catalog.UrgentWithinDays)
	assert.Equal(t, 256, cfg.Tracking.BufferSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("CATALOG_TEST_DB_PASSWORD", "s3cret")
	t.Setenv("CATALOG_TEST_TZ", "Europe/Berlin")

	cfg, err := Parse([]byte(`
database:
  password: ${CATALOG_TEST_DB_PASSWORD}
catalog:
  timezone: ${CATALOG_TEST_TZ}
  urgent_within_days: 3
  regions:
    Nordics: [Sweden, Norway]
sync:
  interval: 1h
`))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "Europe/Berlin", cfg.Catalog.Timezone)
	assert.Equal(t, 3, cfg.Catalog.UrgentWithinDays)
	assert.Equal(t, []string{"Sweden", "Norway"}, cfg.Catalog.Regions["Nordics"])
	assert.Equal(t, time.Hour, cfg.Sync.Interval)

	loc, err := cfg.Catalog.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestParse_RejectsUnknownTimezone(t *testing.T) {
	_, err := Parse([]byte("catalog:\n  timezone: Mars/Olympus\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load timezone")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("database: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
