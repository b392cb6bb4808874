package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg := Load()
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, cfg.RequireBotToken())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("HTTP_TIMEOUT", "eleven seconds")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
}

func TestRequireBotToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	assert.Error(t, Load().RequireBotToken())
}
