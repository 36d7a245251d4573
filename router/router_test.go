package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := Classifier{}

	tests := []struct {
		name string
		text string
		want SizeClass
	}{
		{"bare greeting", "hi", SizeSmall},
		{"short message under threshold", "ok thanks bye", SizeSmall},
		{"long greeting opener", "good morning everyone, hope you slept well today", SizeSmall},
		{"greeting with apostrophe", "how's it going with the new project you started", SizeSmall},
		{"long question", "Can you explain quantum entanglement in detail?", SizeLarge},
		{"greeting word mid-sentence", "I wanted to say hello to everyone at the meetup", SizeLarge},
		{"punctuation counts as tokens", "a, b, c!", SizeLarge},
		{"leading whitespace before greeting", "   hello there my friend, what a lovely day", SizeSmall},
		{"case insensitive", "GOOD NIGHT folks, see you all tomorrow morning", SizeSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text), "text: %q", tt.text)
		})
	}
}

func TestClassifyCustomThreshold(t *testing.T) {
	c := Classifier{MaxTokens: 8}
	assert.Equal(t, SizeSmall, c.Classify("one two three four five six seven eight"))
	assert.Equal(t, SizeLarge, c.Classify("one two three four five six seven eight nine"))
}

func TestResolver(t *testing.T) {
	resolver := NewResolver(map[string]ModelPair{
		"cerebras": {Small: "llama3.1-8b", Large: "llama-3.3-70b"},
	}, ModelPair{Small: "llama-3.1-8b-instant", Large: "llama-3.3-70b-versatile"})

	assert.Equal(t, "llama3.1-8b", resolver.Resolve("cerebras", SizeSmall))
	assert.Equal(t, "llama-3.3-70b", resolver.Resolve("cerebras", SizeLarge))

	// Unknown providers fall back to the default pair.
	assert.Equal(t, "llama-3.1-8b-instant", resolver.Resolve("groq", SizeSmall))
	assert.Equal(t, "llama-3.3-70b-versatile", resolver.Resolve("unknown", SizeLarge))
}

func TestLoadModelTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	content := `
groq:
  small: llama-3.1-8b-instant
  large: llama-3.3-70b-versatile
sambanova:
  small: Meta-Llama-3.1-8B-Instruct
  large: Meta-Llama-3.3-70B-Instruct
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadModelTable(path)
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", table["groq"].Large)
	assert.Equal(t, "Meta-Llama-3.1-8B-Instruct", table["sambanova"].Small)

	_, err = LoadModelTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSizeClassString(t *testing.T) {
	assert.Equal(t, "small", SizeSmall.String())
	assert.Equal(t, "large", SizeLarge.String())
}
