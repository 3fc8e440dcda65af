package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docqa/internal/generation"
	"docqa/internal/openaiclient"
	"docqa/internal/retry"
)

func TestGenerate_Completion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model     string  `json:"model"`
			Prompt    string  `json:"prompt"`
			MaxTokens int     `json:"max_tokens"`
			TopP      float32 `json:"top_p"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Prompt != "raw prompt" || req.MaxTokens != 256 || req.TopP != 0.95 {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"text_completion","choices":[{"index":0,"text":" grounded answer"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/v1", APIKey: "k", Model: "instruct"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	c.WithRetry(retry.Policy{MaxRetries: 0, Delay: func(int) time.Duration { return 0 }, Retryable: openaiclient.Retryable})

	got, err := c.Generate(context.Background(), "raw prompt", generation.DefaultParams())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != " grounded answer" {
		t.Fatalf("Generate() = %q", got)
	}
}
