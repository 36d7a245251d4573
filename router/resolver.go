package router

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelPair holds the small and large model ids for one provider.
type ModelPair struct {
	Small string `yaml:"small"`
	Large string `yaml:"large"`
}

// Resolver is a pure lookup from (provider name, size class) to a model
// id. Unknown provider names fall back to the default pair. No I/O happens
// at resolve time.
type Resolver struct {
	models   map[string]ModelPair
	fallback ModelPair
}

// NewResolver builds a resolver from a per-provider model table and a
// default pair used for providers absent from the table.
func NewResolver(models map[string]ModelPair, fallback ModelPair) *Resolver {
	table := make(map[string]ModelPair, len(models))
	for name, pair := range models {
		table[name] = pair
	}
	return &Resolver{models: table, fallback: fallback}
}

// Resolve returns the model id for a provider and size class.
func (r *Resolver) Resolve(providerName string, size SizeClass) string {
	pair, ok := r.models[providerName]
	if !ok {
		pair = r.fallback
	}
	if size == SizeLarge {
		return pair.Large
	}
	return pair.Small
}

// LoadModelTable reads a YAML model table mapping provider names to
// small/large model ids, overriding the built-in defaults. The file is
// read once at construction.
func LoadModelTable(path string) (map[string]ModelPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model table: %w", err)
	}

	var table map[string]ModelPair
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse model table: %w", err)
	}
	return table, nil
}
