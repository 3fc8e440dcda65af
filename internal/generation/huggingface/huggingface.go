package huggingface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"docqa/internal/domain"
	"docqa/internal/generation"
	"docqa/internal/hfhub"
	"docqa/internal/retry"
)

const (
	DefaultBaseURL = "https://api-inference.huggingface.co/models/"
	DefaultModel   = "unsloth/Llama-3.2-1B-Instruct"
)

// Model is a text-generation client for the Hugging Face Inference API.
type Model struct {
	client  *http.Client
	model   string
	token   string
	baseURL string
	hubURL  string
	retry   retry.Policy
}

var (
	_ generation.Generator = (*Model)(nil)
	_ generation.Checker   = (*Model)(nil)
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
		cfg.Timeout = 120 * time.Second
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

type generateRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters parameters     `json:"parameters"`
	Options    map[string]any `json:"options,omitempty"`
}

type parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateResponse []struct {
	GeneratedText string `json:"generated_text"`
}

func (m *Model) Generate(ctx context.Context, prompt string, params generation.Params) (string, error) {
	payload := generateRequest{
		Inputs: prompt,
		Parameters: parameters{
			MaxNewTokens:   params.MaxNewTokens,
			Temperature:    params.Temperature,
			TopP:           params.TopP,
			DoSample:       true,
			ReturnFullText: false,
		},
		Options: map[string]any{"wait_for_model": true},
	}
	var out generateResponse
	err := retry.Do(ctx, m.retry, func() error {
		out = nil
		return hfhub.PostJSON(ctx, m.client, m.baseURL+m.model, m.token, payload, &out)
	})
	if err != nil {
		var se *hfhub.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden) {
			return "", &domain.ModelUnavailableError{Model: m.model, Err: err}
		}
		return "", fmt.Errorf("huggingface generation: %w", err)
	}
	if len(out) == 0 {
		return "", errors.New("huggingface generation: empty response")
	}
	return out[0].GeneratedText, nil
}
