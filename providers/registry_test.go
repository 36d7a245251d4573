package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mitsuri-bot/mitsuri/internal/logging"
)

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{"groq", "cerebras", "sambanova"} {
		t.Run(name, func(t *testing.T) {
			provider, err := registry.Get(name, "test-api-key")
			require.NoError(t, err)
			assert.Equal(t, name, provider.Name())
		})
	}

	t.Run("unknown provider", func(t *testing.T) {
		_, err := registry.Get("openai", "test-api-key")
		assert.Error(t, err)
	})
}

func TestBuildChainPreservesOrder(t *testing.T) {
	logger := &logging.MockLogger{}
	registry := NewRegistry()

	keys := map[string]string{
		"groq":      "k1",
		"cerebras":  "k2",
		"sambanova": "k3",
	}
	chain := registry.BuildChain([]string{"sambanova", "groq", "cerebras"}, keys, logger)

	require.Len(t, chain, 3)
	assert.Equal(t, "sambanova", chain[0].Name())
	assert.Equal(t, "groq", chain[1].Name())
	assert.Equal(t, "cerebras", chain[2].Name())
}

func TestBuildChainSkipsMissingCredential(t *testing.T) {
	logger := &logging.MockLogger{}
	logger.On("Warn", "Skipping provider", mock.Anything).Return()

	registry := NewRegistry()
	keys := map[string]string{"cerebras": "k2"}
	chain := registry.BuildChain([]string{"groq", "cerebras", "sambanova"}, keys, logger)

	require.Len(t, chain, 1)
	assert.Equal(t, "cerebras", chain[0].Name())
	logger.AssertNumberOfCalls(t, "Warn", 2)
}

func TestBuildChainEmptyOrder(t *testing.T) {
	logger := &logging.MockLogger{}
	chain := NewRegistry().BuildChain(nil, nil, logger)
	assert.Empty(t, chain)
}
