package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Groq implements the Provider interface for Groq's API. Groq fronts the
// primary position in the default fallback chain because of its inference
// latency.
type Groq struct {
	apiKey string
}

// NewGroq creates a Groq provider, failing with a *ConfigError when the
// API key is missing.
func NewGroq(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, &ConfigError{Provider: "groq", Reason: "missing GROQ_API_KEY"}
	}
	return &Groq{apiKey: apiKey}, nil
}

// Name returns the identifier for this provider ("groq").
func (p *Groq) Name() string {
	return "groq"
}

// Endpoint returns the Groq chat completion URL.
func (p *Groq) Endpoint() string {
	return "https://api.groq.com/openai/v1/chat/completions"
}

// Headers returns the HTTP headers required for Groq API requests.
func (p *Groq) Headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + p.apiKey,
	}
}

// PrepareRequest marshals the request into Groq's OpenAI-compatible wire
// format.
func (p *Groq) PrepareRequest(req *Request) ([]byte, error) {
	body := map[string]any{
		"model":       req.Model,
		"messages":    req.Messages,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
		"top_p":       req.TopP,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}

// ParseResponse extracts the generated text from a Groq response.
func (p *Groq) ParseResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", errors.New("empty response from API")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
