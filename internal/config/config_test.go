package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chdirTemp moves into a fresh temp dir so no stray config.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RECON_REPORT_FORMAT=json\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RECON_REPORT_FORMAT") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Report.Format)
}

func TestLoadDotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RECON_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("RECON_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "recon.db", cfg.Store.SQLitePath)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns)
	assert.InDelta(t, 0.6, cfg.Match.FuzzyThreshold, 0.001)
	assert.Equal(t, "Local", cfg.Match.Timezone)
	assert.Equal(t, 0, cfg.Upload.SheetIndex)
	assert.Equal(t, 4, cfg.Upload.Concurrency)
	assert.Equal(t, "yaml", cfg.Report.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /tmp/week.db
match:
  fuzzy_threshold: 0.75
  timezone: America/Chicago
upload:
  sheet_name: Week 12
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/week.db", cfg.Store.SQLitePath)
	assert.InDelta(t, 0.75, cfg.Match.FuzzyThreshold, 0.001)
	assert.Equal(t, "America/Chicago", cfg.Match.Timezone)
	assert.Equal(t, "Week 12", cfg.Upload.SheetName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 4, cfg.Upload.Concurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("RECON_STORE_DRIVER", "postgres")
	t.Setenv("RECON_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("RECON_MATCH_FUZZY_THRESHOLD", "0.8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.8, cfg.Match.FuzzyThreshold, 0.001)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Match.Timezone = "local"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Match.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Match.Timezone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = "recon.db"
	cfg.Match.FuzzyThreshold = 0.6
	cfg.Match.Timezone = "Local"
	cfg.Upload.Concurrency = 4
	cfg.Report.Format = "yaml"
	return cfg
}

func TestValidateReconcile_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("reconcile"))
}

func TestValidateStore_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/ops"
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateStore_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be postgres or sqlite")
}

func TestValidateReconcile_Bounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Match.FuzzyThreshold = 1.2
	cfg.Upload.Concurrency = 0
	cfg.Report.Format = "xml"
	cfg.Match.Timezone = "Not/AZone"

	err := cfg.Validate("reconcile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match.fuzzy_threshold must be between 0 and 1")
	assert.Contains(t, err.Error(), "upload.concurrency must be between 1 and 32")
	assert.Contains(t, err.Error(), "report.format must be yaml or json")
	assert.Contains(t, err.Error(), "match.timezone")

	// Store mode ignores reconcile-only settings.
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
