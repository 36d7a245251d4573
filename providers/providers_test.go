package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderConstructionRequiresCredential(t *testing.T) {
	constructors := map[string]Constructor{
		"groq":      NewGroq,
		"cerebras":  NewCerebras,
		"sambanova": NewSambaNova,
	}

	for name, constructor := range constructors {
		t.Run(name, func(t *testing.T) {
			_, err := constructor("")
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, name, cfgErr.Provider)

			p, err := constructor("test-api-key")
			require.NoError(t, err)
			assert.Equal(t, name, p.Name())
		})
	}
}

func TestPrepareRequest(t *testing.T) {
	p, err := NewGroq("test-api-key")
	require.NoError(t, err)

	req := &Request{
		Model: "llama-3.3-70b-versatile",
		Messages: []Message{
			{Role: RoleSystem, Content: "You are helpful."},
			{Role: RoleUser, Content: "hi"},
		},
		Temperature: 0.8,
		MaxTokens:   150,
		TopP:        0.9,
	}

	data, err := p.PrepareRequest(req)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "llama-3.3-70b-versatile", body["model"])
	assert.InDelta(t, 0.8, body["temperature"], 0.001)
	assert.InDelta(t, 150, body["max_tokens"], 0.001)
	assert.InDelta(t, 0.9, body["top_p"], 0.001)

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
}

func TestParseResponse(t *testing.T) {
	p, err := NewCerebras("test-api-key")
	require.NoError(t, err)

	t.Run("valid response", func(t *testing.T) {
		body := `{"choices":[{"message":{"content":"  hello there  "}}]}`
		content, err := p.ParseResponse([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "hello there", content)
	})

	t.Run("empty choices", func(t *testing.T) {
		_, err := p.ParseResponse([]byte(`{"choices":[]}`))
		assert.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := p.ParseResponse([]byte(`not json`))
		assert.Error(t, err)
	})
}

func TestHeadersCarryAuth(t *testing.T) {
	p, err := NewSambaNova("secret")
	require.NoError(t, err)

	headers := p.Headers()
	assert.Equal(t, "Bearer secret", headers["Authorization"])
	assert.Equal(t, "application/json", headers["Content-Type"])
}

func TestEndpoints(t *testing.T) {
	groq, _ := NewGroq("k")
	cerebras, _ := NewCerebras("k")
	sambanova, _ := NewSambaNova("k")

	assert.Equal(t, "https://api.groq.com/openai/v1/chat/completions", groq.Endpoint())
	assert.Equal(t, "https://api.cerebras.ai/v1/chat/completions", cerebras.Endpoint())
	assert.Equal(t, "https://api.sambanova.ai/v1/chat/completions", sambanova.Endpoint())
}
