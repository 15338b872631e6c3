package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, 25*time.Second, cfg.AISearchTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.AIFallbackBackoff)
	assert.Equal(t, 2, cfg.AIFallbackRetries)
	assert.Equal(t, 800*time.Millisecond, cfg.StoreWriteDelay)
	assert.Equal(t, 5*time.Minute, cfg.AutoRefreshInterval)
	assert.False(t, cfg.AssetsEnabled())
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("AI_FALLBACK_RETRIES", "4")
	t.Setenv("AI_SEARCH_TIMEOUT", "3s")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("AI_FALLBACK_BACKOFF", "not-a-duration")

	cfg := FromEnv()

	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.Equal(t, 4, cfg.AIFallbackRetries)
	assert.Equal(t, 3*time.Second, cfg.AISearchTimeout)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, 1500*time.Millisecond, cfg.AIFallbackBackoff)
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	cfg := FromEnv()
	cfg.StoreBackend = "postgres"
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.AIBackend = "grpc"
	assert.Error(t, cfg.Validate())

	cfg = FromEnv()
	cfg.AIFallbackRetries = -1
	assert.Error(t, cfg.Validate())
}

func TestAssetsEnabled(t *testing.T) {
	cfg := FromEnv()
	cfg.R2AccessKey = "ak"
	cfg.R2SecretKey = "sk"
	assert.False(t, cfg.AssetsEnabled())

	cfg.R2AccountID = "acct"
	assert.True(t, cfg.AssetsEnabled())
}
