package config

import (
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FRONTEND_URL", "")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "sqlite:///./saas_analytics.db", cfg.DatabaseURL)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 60*time.Second, cfg.ModelTimeout)
	assert.Equal(t, time.Hour, cfg.SQLCacheTTL)
	assert.True(t, cfg.SQLGuard)
	assert.Equal(t, []string{
		"http://localhost:3000",
		"http://localhost:8000",
		"https://*.vercel.app",
	}, cfg.AllowedOrigins())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/analytics?sslmode=disable")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MODEL_TIMEOUT", "5s")
	t.Setenv("SQL_GUARD_ENABLED", "false")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "postgres://app:secret@db:5432/analytics?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 5*time.Second, cfg.ModelTimeout)
	assert.False(t, cfg.SQLGuard)
}

func TestLoad_FrontendURLExtendsOrigins(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://saas-analytics-assistant.vercel.app")
	t.Setenv("CORS_EXTRA_ORIGINS", "https://*.example.org, ,https://admin.example.com")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"http://localhost:3000",
		"http://localhost:8000",
		"https://*.vercel.app",
		"https://saas-analytics-assistant.vercel.app",
		"https://*.example.org",
		"https://admin.example.com",
	}, cfg.AllowedOrigins())
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PORT", "9100")

	cfg, err := Load([]string{"-port", "9200", "-sample-users", "7", "-log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Port)
	assert.Equal(t, 7, cfg.SampleUsers)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PORT", "70000")

	_, err := Load(nil)
	assert.Error(t, err)
}

func TestLoad_InvalidOrigin(t *testing.T) {
	for _, origin := range []string{"saas.example.com", "https://*.*.example.com"} {
		t.Setenv("FRONTEND_URL", origin)
		_, err := Load(nil)
		assert.Error(t, err, origin)
	}
}

func TestLoad_Help(t *testing.T) {
	_, err := Load([]string{"-help"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
}
