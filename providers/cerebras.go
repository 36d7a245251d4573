package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Cerebras implements the Provider interface for the Cerebras inference
// API.
type Cerebras struct {
	apiKey string
}

func NewCerebras(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, &ConfigError{Provider: "cerebras", Reason: "missing CEREBRAS_API_KEY"}
	}
	return &Cerebras{apiKey: apiKey}, nil
}

func (p *Cerebras) Name() string {
	return "cerebras"
}

func (p *Cerebras) Endpoint() string {
	return "https://api.cerebras.ai/v1/chat/completions"
}

func (p *Cerebras) Headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + p.apiKey,
	}
}

func (p *Cerebras) PrepareRequest(req *Request) ([]byte, error) {
	body := map[string]any{
		"model":       req.Model,
		"messages":    req.Messages,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
		"top_p":       req.TopP,
		"stream":      false,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}

func (p *Cerebras) ParseResponse(body []byte) (string, error) {
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
