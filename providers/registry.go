package providers

import (
	"fmt"

	"github.com/mitsuri-bot/mitsuri/internal/logging"
)

// Registry manages the closed set of known provider constructors.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry creates a registry with every known provider registered.
func NewRegistry() *Registry {
	return &Registry{
		constructors: map[string]Constructor{
			"groq":      NewGroq,
			"cerebras":  NewCerebras,
			"sambanova": NewSambaNova,
		},
	}
}

// Get constructs the named provider with its credential.
func (r *Registry) Get(name, apiKey string) (Provider, error) {
	constructor, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	return constructor(apiKey)
}

// BuildChain walks the configured priority order and constructs each
// provider with its credential from apiKeys. A provider whose constructor
// fails (missing credential, unknown name) is logged once and omitted; it
// is never attempted at runtime. The returned slice is the immutable
// fallback chain, in configuration order.
func (r *Registry) BuildChain(order []string, apiKeys map[string]string, logger logging.Logger) []Provider {
	chain := make([]Provider, 0, len(order))
	for _, name := range order {
		provider, err := r.Get(name, apiKeys[name])
		if err != nil {
			logger.Warn("Skipping provider", "provider", name, "error", err)
			continue
		}
		chain = append(chain, provider)
	}
	return chain
}
