// Package openaiclient builds go-openai clients shared by the OpenAI
// embedder and generator.
package openaiclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New creates a client for the OpenAI API or any compatible server.
func New(cfg Config) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	c.HTTPClient = &http.Client{Timeout: t}
	return openai.NewClientWithConfig(c), nil
}

// StatusCode extracts the HTTP status from a go-openai error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// Retryable reports rate limits, server errors and transport failures.
func Retryable(err error) bool {
	code := StatusCode(err)
	return code == 0 || code == http.StatusTooManyRequests || code >= 500
}

// Describe wraps err with the provider status when one is known.
func Describe(op string, err error) error {
	if code := StatusCode(err); code != 0 {
		return fmt.Errorf("openai %s failed (%d): %w", op, code, err)
	}
	return fmt.Errorf("openai %s failed: %w", op, err)
}
