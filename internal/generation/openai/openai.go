package openai

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"docqa/internal/domain"
	"docqa/internal/generation"
	"docqa/internal/openaiclient"
	"docqa/internal/retry"
)

const DefaultModel = "gpt-3.5-turbo-instruct"

// Client generates text through the completions endpoint of an
// OpenAI-compatible server. The prompt is sent verbatim.
type Client struct {
	client *openai.Client
	model  string
	retry  retry.Policy
}

var (
	_ generation.Generator = (*Client)(nil)
	_ generation.Checker   = (*Client)(nil)
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	c, err := openaiclient.New(openaiclient.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Timeout: cfg.Timeout})
	if err != nil {
		return nil, &domain.ModelUnavailableError{Model: cfg.Model, Err: err}
	}
	return &Client{client: c, model: cfg.Model, retry: retry.Default(openaiclient.Retryable)}, nil
}

// WithRetry replaces the retry policy.
func (c *Client) WithRetry(p retry.Policy) *Client {
	c.retry = p
	return c
}

func (c *Client) Name() string { return "openai:" + c.model }

func (c *Client) Check(ctx context.Context) error {
	if _, err := c.client.GetModel(ctx, c.model); err != nil {
		return &domain.ModelUnavailableError{Model: c.model, Err: err}
	}
	return nil
}

func (c *Client) Generate(ctx context.Context, prompt string, params generation.Params) (string, error) {
	var resp openai.CompletionResponse
	err := retry.Do(ctx, c.retry, func() error {
		var err error
		resp, err = c.client.CreateCompletion(ctx, openai.CompletionRequest{
			Model:       c.model,
			Prompt:      prompt,
			MaxTokens:   params.MaxNewTokens,
			Temperature: float32(params.Temperature),
			TopP:        float32(params.TopP),
		})
		return err
	})
	if err != nil {
		return "", openaiclient.Describe("completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai completion: no choices returned")
	}
	return resp.Choices[0].Text, nil
}
