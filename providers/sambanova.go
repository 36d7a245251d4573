package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SambaNova implements the Provider interface for SambaNova's cloud API,
// the last resort in the default fallback chain.
type SambaNova struct {
	apiKey string
}

func NewSambaNova(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, &ConfigError{Provider: "sambanova", Reason: "missing SAMBANOVA_API_KEY"}
	}
	return &SambaNova{apiKey: apiKey}, nil
}

func (p *SambaNova) Name() string {
	return "sambanova"
}

func (p *SambaNova) Endpoint() string {
	return "https://api.sambanova.ai/v1/chat/completions"
}

func (p *SambaNova) Headers() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + p.apiKey,
	}
}

func (p *SambaNova) PrepareRequest(req *Request) ([]byte, error) {
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

func (p *SambaNova) ParseResponse(body []byte) (string, error) {
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
