package llm

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mitsuri-bot/mitsuri/internal/logging"
	"github.com/mitsuri-bot/mitsuri/providers"
)

// Backend is one generation backend the fallback chain can attempt. Every
// call performs at most one outbound network request and returns either a
// result or an error classified into the provider taxonomy.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req *Request, model string) (*Result, error)
}

// ProviderClient performs the HTTP round trip for one provider. Vendor
// failures are classified here, closest to the vendor shape, so the
// fallback chain only ever reasons about the three runtime error kinds.
type ProviderClient struct {
	provider providers.Provider
	client   *http.Client
	limiter  *rate.Limiter
	logger   logging.Logger
}

// NewProviderClient wraps a provider with a shared-nothing HTTP client.
// requestsPerMinute throttles outbound calls to the vendor; zero disables
// pacing.
func NewProviderClient(p providers.Provider, timeout time.Duration, requestsPerMinute int, logger logging.Logger) *ProviderClient {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}
	return &ProviderClient{
		provider: p,
		client:   &http.Client{Timeout: timeout},
		limiter:  limiter,
		logger:   logger,
	}
}

func (c *ProviderClient) Name() string {
	return c.provider.Name()
}

// Generate sends one request to the provider and returns the classified
// outcome. The context covers the pacing wait and the network call, so an
// external deadline cancels the in-flight request.
func (c *ProviderClient) Generate(ctx context.Context, req *Request, model string) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	providerReq := &providers.Request{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	}

	reqBody, err := c.provider.PrepareRequest(providerReq)
	if err != nil {
		return nil, &providers.Error{Provider: c.Name(), Kind: providers.KindPermanent, Message: "failed to prepare request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.Endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, &providers.Error{Provider: c.Name(), Kind: providers.KindPermanent, Message: "failed to create request", Err: err}
	}
	for k, v := range c.provider.Headers() {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("Provider request failed", "provider", c.Name(), "error", err)
		return nil, providers.NewError(c.Name(), 0, err.Error(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.NewError(c.Name(), 0, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Provider API error", "provider", c.Name(), "status", resp.StatusCode, "body", string(body))
		return nil, providers.NewError(c.Name(), resp.StatusCode, string(body), nil)
	}

	content, err := c.provider.ParseResponse(body)
	if err != nil {
		// A well-formed HTTP 200 with an unusable body is a vendor
		// contract violation, not something a retry can fix.
		return nil, &providers.Error{
			Provider: c.Name(),
			Kind:     providers.KindPermanent,
			Message:  "failed to parse response",
			Err:      err,
		}
	}

	return &Result{Content: content, Provider: c.Name()}, nil
}
