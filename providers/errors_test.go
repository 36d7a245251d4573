package providers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		message    string
		want       ErrorKind
	}{
		{"http 429", 429, "Too Many Requests", KindRateLimited},
		{"rate limit in message", 400, "Rate limit reached for model", KindRateLimited},
		{"rate limit lowercase", 503, "rate limit exceeded", KindRateLimited},
		{"server error", 500, "Internal Server Error", KindTransient},
		{"bad gateway", 502, "Bad Gateway", KindTransient},
		{"network failure", 0, "connection refused", KindTransient},
		{"timeout", 0, "context deadline exceeded", KindTransient},
		{"bad credentials", 401, "Invalid API key", KindPermanent},
		{"bad request", 400, "model not found", KindPermanent},
		{"validation failure", 422, "invalid temperature", KindPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.statusCode, tt.message))
		})
	}
}

func TestNewError(t *testing.T) {
	wrapped := errors.New("dial tcp: connection refused")
	err := NewError("groq", 0, "connection refused", wrapped)

	assert.Equal(t, KindTransient, err.Kind)
	assert.Equal(t, "groq", err.Provider)
	assert.ErrorIs(t, err, wrapped)
	assert.Contains(t, err.Error(), "Transient")
}

func TestAsError(t *testing.T) {
	perr := NewError("cerebras", 429, "rate limit", nil)

	got, ok := AsError(perr)
	require.True(t, ok)
	assert.Equal(t, KindRateLimited, got.Kind)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "RateLimited", KindRateLimited.String())
	assert.Equal(t, "Transient", KindTransient.String())
	assert.Equal(t, "Permanent", KindPermanent.String())
}
