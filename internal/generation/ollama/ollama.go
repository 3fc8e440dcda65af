package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	olla "github.com/ollama/ollama/api"

	"docqa/internal/domain"
	"docqa/internal/generation"
)

const DefaultBaseURL = "http://localhost:11434"

// Ollama generates text from raw prompts on an Ollama server.
type Ollama struct {
	client *olla.Client
	model  string
	cpu    bool
}

var (
	_ generation.Generator = (*Ollama)(nil)
	_ generation.Checker   = (*Ollama)(nil)
)

// New creates a client for model. When cpu is set no layers are offloaded
// to a GPU.
func New(model, baseURL string, cpu bool, timeout time.Duration) (*Ollama, error) {
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
	client := olla.NewClient(parsedURL, &http.Client{Timeout: timeout})
	return &Ollama{client: client, model: model, cpu: cpu}, nil
}

func (o *Ollama) Name() string { return "ollama:" + o.model }

func (o *Ollama) Check(ctx context.Context) error {
	if _, err := o.client.Show(ctx, &olla.ShowRequest{Model: o.model}); err != nil {
		return &domain.ModelUnavailableError{Model: o.model, Err: err}
	}
	return nil
}

// Generate sends prompt without applying the model template.
func (o *Ollama) Generate(ctx context.Context, prompt string, params generation.Params) (string, error) {
	options := map[string]any{
		"num_predict": params.MaxNewTokens,
		"temperature": params.Temperature,
		"top_p":       params.TopP,
	}
	if o.cpu {
		options["num_gpu"] = 0
	}
	stream := false
	var sb strings.Builder
	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:   o.model,
		Prompt:  prompt,
		Raw:     true,
		Stream:  &stream,
		Options: options,
	}, func(resp olla.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	return sb.String(), nil
}
