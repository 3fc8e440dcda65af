package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"docqa/internal/domain"
	"docqa/internal/embedding"
	"docqa/internal/openaiclient"
	"docqa/internal/retry"
)

const DefaultModel = "text-embedding-3-small"

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
type Client struct {
	client *openai.Client
	model  string
	retry  retry.Policy
}

var (
	_ embedding.Embedder = (*Client)(nil)
	_ embedding.Checker  = (*Client)(nil)
)

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	c, err := openaiclient.New(openaiclient.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Timeout: cfg.Timeout})
	if err != nil {
		return nil, &domain.ModelUnavailableError{Model: cfg.Model, Err: err}
	}
	return &Client{
		client: c,
		model:  cfg.Model,
		retry:  retry.Default(openaiclient.Retryable),
	}, nil
}

// WithRetry replaces the retry policy.
func (c *Client) WithRetry(p retry.Policy) *Client {
	c.retry = p
	return c
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Check verifies the model exists and the key is accepted.
func (c *Client) Check(ctx context.Context) error {
	if _, err := c.client.GetModel(ctx, c.model); err != nil {
		return &domain.ModelUnavailableError{Model: c.model, Err: err}
	}
	return nil
}

// Embed returns one embedding per text in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var resp openai.EmbeddingResponse
	err := retry.Do(ctx, c.retry, func() error {
		var err error
		resp, err = c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(c.model),
		})
		return err
	})
	if err != nil {
		return nil, openaiclient.Describe("embeddings", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if len(d.Embedding) == 0 {
			return nil, errors.New("no embedding returned")
		}
		v := make([]float32, len(d.Embedding))
		for j := range d.Embedding {
			v[j] = float32(d.Embedding[j])
		}
		out[i] = v
	}
	return out, nil
}
