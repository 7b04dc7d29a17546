package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("SEARCH_CASE_INSENSITIVE", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:4000", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.True(t, cfg.App.SeedDefaults)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "tickets.events", cfg.Redis.EventsChannel)
	assert.False(t, cfg.Search.CaseInsensitive)
	assert.Equal(t, 480, cfg.Auth.AccessTokenTTLMinutes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("SEARCH_CASE_INSENSITIVE", "true")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("POSTGRES_MAX_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Search.CaseInsensitive)
	assert.Zero(t, cfg.App.RequestTimeout())
	assert.EqualValues(t, 10, cfg.Postgres.MaxConns)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid REDIS_DB")
}

func TestNotificationConfig_WebhookTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, NotificationConfig{}.WebhookTimeout())
	assert.Equal(t, 2*time.Second, NotificationConfig{WebhookTimeoutSeconds: 2}.WebhookTimeout())
}
