package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"docqa/internal/domain"
	"docqa/internal/embedding"
	"docqa/internal/hfhub"
	"docqa/internal/retry"
)

const (
	DefaultBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction/"
	DefaultModel   = "sentence-transformers/all-MiniLM-L6-v2"
)

// Model is an embedding client for the Hugging Face Inference API
// feature-extraction pipeline.
type Model struct {
	client  *http.Client
	model   string
	token   string
	baseURL string
	hubURL  string
	retry   retry.Policy
}

var (
	_ embedding.Embedder = (*Model)(nil)
	_ embedding.Checker  = (*Model)(nil)
)

type Config struct {
	Model   string
	Token   string
	BaseURL string
	HubURL  string
	Timeout time.Duration
}

func New(cfg Config) *Model {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Model{
		client:  &http.Client{Timeout: cfg.Timeout},
		model:   cfg.Model,
		token:   cfg.Token,
		baseURL: cfg.BaseURL,
		hubURL:  cfg.HubURL,
		retry:   retry.Default(hfhub.Retryable),
	}
}

// WithRetry replaces the retry policy.
func (m *Model) WithRetry(p retry.Policy) *Model {
	m.retry = p
	return m
}

func (m *Model) Name() string { return "huggingface:" + m.model }

func (m *Model) Check(ctx context.Context) error {
	return hfhub.CheckModel(ctx, m.client, m.hubURL, m.model, m.token)
}

// Embed sends texts in one request and returns one vector per text.
func (m *Model) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	payload := map[string]any{
		"inputs":  texts,
		"options": map[string]bool{"wait_for_model": true},
	}
	var embeddings [][]float32
	err := retry.Do(ctx, m.retry, func() error {
		embeddings = nil
		return hfhub.PostJSON(ctx, m.client, m.baseURL+m.model, m.token, payload, &embeddings)
	})
	if err != nil {
		if se, ok := err.(*hfhub.StatusError); ok && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
			return nil, &domain.ModelUnavailableError{Model: m.model, Err: err}
		}
		return nil, fmt.Errorf("huggingface embeddings: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("huggingface embeddings: got %d vectors for %d inputs", len(embeddings), len(texts))
	}
	return embeddings, nil
}
