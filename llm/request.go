// Package llm hosts the generation gateway: the per-provider HTTP client,
// the ordered fallback chain that drives retry and provider advancement,
// and the token-budgeted conversation memory.
package llm

import (
	"github.com/mitsuri-bot/mitsuri/providers"
	"github.com/mitsuri-bot/mitsuri/router"
)

// Request is one generation request as seen by the gateway: the ordered
// message history (oldest first), the traffic size class, and the sampling
// parameters.
type Request struct {
	Messages    []providers.Message `validate:"required,min=1"`
	Size        router.SizeClass
	Temperature float64 `validate:"gte=0,lte=2"`
	MaxTokens   int     `validate:"gt=0"`
	TopP        float64 `validate:"gte=0,lte=1"`
}

// Result is a successful generation: the text and the provider that
// produced it.
type Result struct {
	Content  string
	Provider string
}
