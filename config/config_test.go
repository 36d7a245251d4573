package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitsuri-bot/mitsuri/router"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"groq", "cerebras", "sambanova"}, cfg.ProviderOrder)
	assert.InDelta(t, 0.8, cfg.Temperature, 0.001)
	assert.Equal(t, 150, cfg.MaxTokens)
	assert.InDelta(t, 0.9, cfg.TopP, 0.001)
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Backoff)
	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 3*time.Second, cfg.GroupCooldown)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.CommonCacheTTL)
	assert.Equal(t, 4, cfg.SmallTalkMaxTokens)
	assert.NotEmpty(t, cfg.SystemPrompt)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROVIDER_ORDER", "cerebras,groq")
	t.Setenv("LLM_TEMPERATURE", "0.3")
	t.Setenv("MAX_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"cerebras", "groq"}, cfg.ProviderOrder)
	assert.InDelta(t, 0.3, cfg.Temperature, 0.001)
	assert.Equal(t, 5, cfg.MaxAttempts)
}

func TestLoadCollectsAPIKeys(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gk")
	t.Setenv("CEREBRAS_API_KEY", "ck")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gk", cfg.APIKeys["groq"])
	assert.Equal(t, "ck", cfg.APIKeys["cerebras"])
}

func TestLoadRejectsInvalidSampling(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "3.0")
	_, err := Load()
	assert.Error(t, err)
}

func TestModels(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	table, fallback, err := cfg.Models()
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", table["groq"].Large)
	assert.Equal(t, "llama3.1-8b", table["cerebras"].Small)
	assert.Equal(t, "Meta-Llama-3.3-70B-Instruct", table["sambanova"].Large)
	assert.Equal(t, "llama-3.1-8b-instant", fallback.Small)
}

func TestModelsYAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groq:\n  small: tiny\n  large: big\n"), 0o600))
	t.Setenv("MODEL_TABLE_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	table, _, err := cfg.Models()
	require.NoError(t, err)
	assert.Equal(t, router.ModelPair{Small: "tiny", Large: "big"}, table["groq"])
	// Untouched providers keep their defaults.
	assert.Equal(t, "llama-3.3-70b", table["cerebras"].Large)
}
