// Package openaicompat implements port.ChatCompleter for providers exposing the
// OpenAI Chat Completions wire format (Groq, OpenAI).
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"foodsafe/internal/config"
	"foodsafe/internal/domain"
	"foodsafe/internal/inference"
	"foodsafe/internal/metrics"
	"foodsafe/internal/port"
)

// Default chat-completion endpoints by provider name.
var endpoints = map[string]string{
	"groq":   "https://api.groq.com/openai/v1/chat/completions",
	"openai": "https://api.openai.com/v1/chat/completions",
}

// Register adds every OpenAI-compatible provider to the inference registry.
func Register() {
	for name := range endpoints {
		inference.RegisterProvider(name, func(cfg *config.InferenceConfig) (port.ChatCompleter, error) {
			return NewClient(cfg), nil
		})
	}
}

// Client calls an OpenAI-compatible Chat Completions endpoint.
type Client struct {
	apiKey   string
	provider string
	endpoint string
	client   *http.Client
}

// NewClient creates a client for cfg.Provider. cfg.Endpoint, when set,
// overrides the provider's default endpoint.
func NewClient(cfg *config.InferenceConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = endpoints[cfg.Provider]
	}
	return newClient(cfg, endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.InferenceConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.InferenceConfig, endpoint string) *Client {
	provider := cfg.Provider
	if provider == "" {
		provider = "groq"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		provider: provider,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Complete sends one non-streaming chat request and returns the first choice's content.
// Every failure is a *domain.RemoteServiceError; HTTP 429 also wraps an
// *inference.RateLimitError.
func (c *Client) Complete(ctx context.Context, req port.ChatRequest) (string, error) {
	req.Stream = false

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return "", c.fail(0, fmt.Errorf("marshaling request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", c.fail(0, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.ObserveInference(c.provider, 0)
		return "", c.fail(0, fmt.Errorf("calling %s API: %w", c.provider, err))
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveInference(c.provider, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail(resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("API error: %s", truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := inference.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", c.fail(resp.StatusCode, inference.NewRateLimitError(c.provider, baseErr, retryAfter))
		}
		return "", c.fail(resp.StatusCode, baseErr)
	}

	text, err := parseResponse(respBody)
	if err != nil {
		return "", c.fail(resp.StatusCode, err)
	}
	return text, nil
}

func (c *Client) fail(status int, err error) error {
	return &domain.RemoteServiceError{Provider: c.provider, StatusCode: status, Err: err}
}

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", domain.ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
