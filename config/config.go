// Package config loads the bot's construction-time configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/mitsuri-bot/mitsuri/internal/logging"
	"github.com/mitsuri-bot/mitsuri/router"
)

// DefaultSystemPrompt is the persona prepended to every conversation.
const DefaultSystemPrompt = "You are Mitsuri Kanroji from Demon Slayer. " +
	"Personality: Romantic, bubbly, cheerful, and sweet. Use emojis sparingly (🍡, 💖). " +
	"Language: Hinglish (mix of Hindi and English). " +
	"Keep responses concise and natural - around 1-3 sentences. Be warm and friendly!"

type Config struct {
	// Provider chain, in priority order. Operators rank providers by
	// cost and quality; the order is never reshuffled at runtime.
	ProviderOrder []string `env:"PROVIDER_ORDER" envSeparator:"," envDefault:"groq,cerebras,sambanova"`

	// APIKeys maps provider name to credential, populated from every
	// *_API_KEY environment variable.
	APIKeys map[string]string

	// Model routing table, one small/large pair per provider. The groq
	// pair doubles as the default for providers absent from the table.
	GroqModelSmall      string `env:"MODEL_SMALL" envDefault:"llama-3.1-8b-instant"`
	GroqModelLarge      string `env:"MODEL_LARGE" envDefault:"llama-3.3-70b-versatile"`
	CerebrasModelSmall  string `env:"CEREBRAS_MODEL_SMALL" envDefault:"llama3.1-8b"`
	CerebrasModelLarge  string `env:"CEREBRAS_MODEL_LARGE" envDefault:"llama-3.3-70b"`
	SambaNovaModelSmall string `env:"SAMBANOVA_MODEL_SMALL" envDefault:"Meta-Llama-3.1-8B-Instruct"`
	SambaNovaModelLarge string `env:"SAMBANOVA_MODEL_LARGE" envDefault:"Meta-Llama-3.3-70B-Instruct"`

	// ModelTableFile optionally points at a YAML file overriding the
	// model routing table.
	ModelTableFile string `env:"MODEL_TABLE_FILE"`

	// Sampling parameters applied to every generation request.
	Temperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.8" validate:"gte=0,lte=2"`
	MaxTokens   int     `env:"LLM_MAX_TOKENS"  envDefault:"150" validate:"gt=0"`
	TopP        float64 `env:"LLM_TOP_P"       envDefault:"0.9" validate:"gte=0,lte=1"`

	// Fallback chain behavior.
	MaxAttempts       int           `env:"MAX_ATTEMPTS"      envDefault:"2" validate:"gte=1"`
	Backoff           time.Duration `env:"BACKOFF"           envDefault:"1s"`
	ProviderTimeout   time.Duration `env:"PROVIDER_TIMEOUT"  envDefault:"30s"`
	RequestsPerMinute int           `env:"PROVIDER_REQUESTS_PER_MINUTE" envDefault:"0" validate:"gte=0"`

	// Protection layer.
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW"    envDefault:"60s"`
	RateLimitMax       int           `env:"RATE_LIMIT_MAX"       envDefault:"10" validate:"gte=1"`
	GroupCooldown      time.Duration `env:"GROUP_COOLDOWN"       envDefault:"3s"`
	CacheTTL           time.Duration `env:"CACHE_TTL"            envDefault:"1h"`
	CommonCacheTTL     time.Duration `env:"COMMON_CACHE_TTL"     envDefault:"24h"`
	CacheSweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"5m"`

	// Routing and history.
	SmallTalkMaxTokens int    `env:"SMALL_TALK_MAX_TOKENS" envDefault:"4" validate:"gte=1"`
	HistoryMaxTokens   int    `env:"HISTORY_MAX_TOKENS"    envDefault:"1024" validate:"gte=1"`
	SystemPrompt       string `env:"SYSTEM_PROMPT"`

	LogLevel logging.LogLevel `env:"LOG_LEVEL" envDefault:"INFO"`
}

var validate = validator.New()

// Load parses the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		APIKeys: make(map[string]string),
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	loadAPIKeys(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadAPIKeys collects every *_API_KEY environment variable into the
// per-provider credential map. A missing credential is not an error here;
// the provider is dropped from the chain at construction.
func loadAPIKeys(cfg *Config) {
	for _, envVar := range os.Environ() {
		key, value, found := strings.Cut(envVar, "=")
		if found && strings.HasSuffix(strings.ToUpper(key), "_API_KEY") {
			provider := strings.TrimSuffix(strings.ToUpper(key), "_API_KEY")
			cfg.APIKeys[strings.ToLower(provider)] = value
		}
	}
}

// Models builds the model routing table, applying the optional YAML
// override on top of the built-in defaults.
func (c *Config) Models() (map[string]router.ModelPair, router.ModelPair, error) {
	fallback := router.ModelPair{Small: c.GroqModelSmall, Large: c.GroqModelLarge}
	table := map[string]router.ModelPair{
		"groq":      {Small: c.GroqModelSmall, Large: c.GroqModelLarge},
		"cerebras":  {Small: c.CerebrasModelSmall, Large: c.CerebrasModelLarge},
		"sambanova": {Small: c.SambaNovaModelSmall, Large: c.SambaNovaModelLarge},
	}

	if c.ModelTableFile != "" {
		override, err := router.LoadModelTable(c.ModelTableFile)
		if err != nil {
			return nil, router.ModelPair{}, err
		}
		for name, pair := range override {
			table[name] = pair
		}
	}
	return table, fallback, nil
}
