package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mitsuri-bot/mitsuri/internal/logging"
	"github.com/mitsuri-bot/mitsuri/providers"
	"github.com/mitsuri-bot/mitsuri/router"
)

const (
	// DefaultMaxAttempts is the per-provider attempt budget.
	DefaultMaxAttempts = 2
	// DefaultBackoff is the fixed delay between transient retries.
	DefaultBackoff = time.Second
)

// ErrNoProviders is returned when the configured chain is empty.
var ErrNoProviders = errors.New("no providers configured")

// ExhaustedError is returned when every provider in the chain has failed.
// It wraps the last recorded provider error.
type ExhaustedError struct {
	LastErr error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all providers exhausted: %v", e.LastErr)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// Fallback drives the retry and provider-advancement state machine over an
// immutable, configuration-ordered chain of backends. Ordering is strictly
// the configured priority order: operators rank providers by cost and
// quality, so there is no latency-based reordering and the first success
// wins.
type Fallback struct {
	backends    []Backend
	resolver    *router.Resolver
	maxAttempts int
	backoff     time.Duration
	logger      logging.Logger
}

// NewFallback creates a fallback chain over the given backends.
// maxAttempts and backoff fall back to the defaults when zero.
func NewFallback(backends []Backend, resolver *router.Resolver, maxAttempts int, backoff time.Duration, logger logging.Logger) *Fallback {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Fallback{
		backends:    backends,
		resolver:    resolver,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}
}

// Generate attempts each backend in order until one succeeds.
//
// Per backend: up to maxAttempts identical calls. A rate-limited or
// permanent failure abandons the remaining attempts for that backend
// immediately; a transient failure sleeps the fixed backoff and retries
// until the attempt budget is spent. When the whole chain fails, the
// returned *ExhaustedError wraps the last recorded error.
func (f *Fallback) Generate(ctx context.Context, req *Request) (*Result, error) {
	if len(f.backends) == 0 {
		return nil, ErrNoProviders
	}

	var lastErr error
	for _, backend := range f.backends {
		model := f.resolver.Resolve(backend.Name(), req.Size)

	attempts:
		for attempt := 1; attempt <= f.maxAttempts; attempt++ {
			result, err := backend.Generate(ctx, req, model)
			if err == nil {
				f.logger.Info("Generation succeeded", "provider", backend.Name(), "model", model, "attempt", attempt)
				return result, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			lastErr = err
			perr, ok := providers.AsError(err)
			if !ok {
				// Unclassified errors cannot be retried safely; treat
				// like a permanent fault and advance.
				f.logger.Error("Unclassified backend error", "provider", backend.Name(), "error", err)
				break attempts
			}

			switch perr.Kind {
			case providers.KindRateLimited:
				f.logger.Warn("Provider rate limited, skipping retries", "provider", backend.Name())
				break attempts
			case providers.KindPermanent:
				f.logger.Error("Provider permanent error", "provider", backend.Name(), "error", err)
				break attempts
			case providers.KindTransient:
				f.logger.Warn("Provider transient error", "provider", backend.Name(), "attempt", attempt, "max_attempts", f.maxAttempts)
				if attempt < f.maxAttempts {
					if err := f.wait(ctx); err != nil {
						return nil, err
					}
				}
			}
		}

		f.logger.Info("Falling back to next provider", "from", backend.Name())
	}

	return nil, &ExhaustedError{LastErr: lastErr}
}

func (f *Fallback) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.backoff):
		return nil
	}
}
