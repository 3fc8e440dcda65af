package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa/internal/generation"
)

func TestGenerate_RawPromptOnCPU(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Model   string         `json:"model"`
			Prompt  string         `json:"prompt"`
			Raw     bool           `json:"raw"`
			Options map[string]any `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !req.Raw || req.Prompt != "p" {
			t.Errorf("expected raw prompt, got %+v", req)
		}
		if req.Options["num_gpu"] != float64(0) || req.Options["num_predict"] != float64(256) {
			t.Errorf("unexpected options %+v", req.Options)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"hello there","done":true}`))
	}))
	defer srv.Close()

	o, err := New("llama3.2", srv.URL, true, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got, err := o.Generate(context.Background(), "p", generation.DefaultParams())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hello there" {
		t.Fatalf("Generate() = %q", got)
	}
}
