package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "HAYAT_PROVIDER", "HAYAT_STORE", "HAYAT_REMOTE_TIMEOUT", "HAYAT_HISTORY_WINDOW", "OPENAI_API_KEY", "LOG_DEVELOPMENT"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 20*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 10, cfg.HistoryWindow)
	assert.False(t, cfg.LogDevelopment)
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Warnings(), 1)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("HAYAT_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("HAYAT_STORE", "sqlite")
	t.Setenv("HAYAT_REMOTE_TIMEOUT", "5")
	t.Setenv("HAYAT_HISTORY_WINDOW", "4")
	t.Setenv("LOG_DEVELOPMENT", "yes")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 5*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 4, cfg.HistoryWindow)
	assert.True(t, cfg.LogDevelopment)
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Warnings())
}

func TestGetters(t *testing.T) {
	t.Setenv("X_DUR", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, getEnvDurationDefault("X_DUR", time.Second))
	t.Setenv("X_DUR", "soon")
	assert.Equal(t, time.Second, getEnvDurationDefault("X_DUR", time.Second))

	t.Setenv("X_INT", "abc")
	assert.Equal(t, 7, getEnvIntDefault("X_INT", 7))

	t.Setenv("X_BOOL", "maybe")
	assert.True(t, getEnvBoolDefault("X_BOOL", true))
	t.Setenv("X_BOOL", "off")
	assert.False(t, getEnvBoolDefault("X_BOOL", true))
}

func TestValidate(t *testing.T) {
	base := Config{Provider: ProviderOffline, Store: StoreMemory, RemoteTimeout: time.Second, HistoryWindow: 10}
	require.NoError(t, base.Validate())

	bad := base
	bad.Provider = "claude"
	assert.Error(t, bad.Validate())

	bad = base
	bad.Store = StorePostgres
	assert.ErrorContains(t, bad.Validate(), "DB_URL")

	bad = base
	bad.Store = "redis"
	assert.Error(t, bad.Validate())

	bad = base
	bad.RemoteTimeout = 0
	assert.Error(t, bad.Validate())
}
