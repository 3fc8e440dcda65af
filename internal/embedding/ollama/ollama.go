package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"

	"docqa/internal/domain"
	"docqa/internal/embedding"
)

const DefaultBaseURL = "http://localhost:11434"

// Model is an embedding client for an Ollama server.
type Model struct {
	client *ollama.Client
	model  string
}

var (
	_ embedding.Embedder = (*Model)(nil)
	_ embedding.Checker  = (*Model)(nil)
)

// New creates a client for model. An empty baseURL means the local default.
func New(model, baseURL string, timeout time.Duration) (*Model, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	client := ollama.NewClient(parsedURL, &http.Client{Timeout: timeout})
	return &Model{client: client, model: model}, nil
}

func (m *Model) Name() string { return "ollama:" + m.model }

// Check confirms the model is pulled on the server.
func (m *Model) Check(ctx context.Context) error {
	if _, err := m.client.Show(ctx, &ollama.ShowRequest{Model: m.model}); err != nil {
		return &domain.ModelUnavailableError{Model: m.model, Err: err}
	}
	return nil
}

func (m *Model) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := m.client.Embed(ctx, &ollama.EmbedRequest{
		Model: m.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get batch embeddings from ollama: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embeddings: got %d vectors for %d inputs", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}
