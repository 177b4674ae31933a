package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	for _, key := range []string{"SERVER_PORT", "JWT_SECRET", "DEFAULT_POSTFIX", "GENERATION_STAGGER_SECONDS",
		"GENERATION_MIN_SECONDS", "GENERATION_MAX_SECONDS", "CORS_ALLOWED_ORIGINS", "RATE_LIMIT_PER_MINUTE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "NOV29", cfg.DefaultPostfix)
	assert.Equal(t, 2*time.Second, cfg.GenerationStagger)
	assert.Equal(t, 5*time.Second, cfg.GenerationMinTime)
	assert.Equal(t, 15*time.Second, cfg.GenerationMaxTime)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DEFAULT_POSTFIX", "dec01")
	t.Setenv("GENERATION_STAGGER_SECONDS", "0.5")
	t.Setenv("GENERATION_MIN_SECONDS", "10")
	t.Setenv("GENERATION_MAX_SECONDS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("JWT_EXPIRATION_HOURS", "-1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "DEC01", cfg.DefaultPostfix)
	assert.Equal(t, 500*time.Millisecond, cfg.GenerationStagger)
	assert.Equal(t, 10*time.Second, cfg.GenerationMinTime)
	assert.Equal(t, 10*time.Second, cfg.GenerationMaxTime, "max below min is raised to min")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
}
