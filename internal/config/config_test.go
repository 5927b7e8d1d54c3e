package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)

	cfg := Load()

	assert.Equal(t, "Reportes Service", cfg.App.Name)
	assert.Equal(t, "5001", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, 5, cfg.Database.PoolSize)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.ReportTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiration)
	assert.Equal(t, "0.0.0.0:5001", cfg.Addr())
}

func TestLoadDevelopmentProfile(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)

	cfg := Load()

	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadTestingProfile(t *testing.T) {
	t.Setenv("APP_ENV", EnvTesting)

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, ":memory:", cfg.Database.SQLitePath)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 100, cfg.Reports.MaxRows)
}

func TestLoadProductionProfile(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)

	cfg := Load()

	assert.True(t, cfg.Auth.Enabled)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "warn", cfg.App.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_DB_PATH", "/tmp/reportes.db")
	t.Setenv("CACHE_DEFAULT_TTL", "60")
	t.Setenv("RATELIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.com, http://b.com")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "/tmp/reportes.db", cfg.Database.SQLitePath)
	assert.Equal(t, time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.CORS.AllowedOrigins)
}

func TestValidateProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("API_KEY_HUBPEDIDOS", "hub_key")

	cfg := Load()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")

	t.Setenv("SECRET_KEY", "super-secret-production-key")
	cfg = Load()
	assert.NoError(t, cfg.Validate())
}

func TestValidateMySQLFields(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("DB_TYPE", "mysql")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "root")

	cfg := Load()
	cfg.Database.DBName = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_NAME")
}

func TestValidateAuthNeedsKeys(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)

	cfg := Load()
	cfg.Auth.Enabled = true
	cfg.Auth.KeyHubPedidos = ""
	cfg.Auth.KeyAdmin = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API Key")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "valor")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "no-numero")
	t.Setenv("TEST_FLOAT", "1.5")
	t.Setenv("TEST_BOOL", "true")

	assert.Equal(t, "valor", getEnv("TEST_STR", "default"))
	assert.Equal(t, "default", getEnv("TEST_MISSING", "default"))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("TEST_INT_BAD", 7))
	assert.Equal(t, 1.5, getEnvFloat("TEST_FLOAT", 0))
	assert.True(t, getEnvBool("TEST_BOOL", false))
	assert.True(t, getEnvBool("TEST_MISSING", true))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitAndTrim("a, b ,c"))
	assert.Empty(t, splitAndTrim(""))
	assert.Equal(t, []string{"solo"}, splitAndTrim("solo,"))
}
