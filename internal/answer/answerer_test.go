package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"docqa/internal/generation"
)

type fakeGenerator struct {
	out    string
	err    error
	prompt string
	params generation.Params
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Generate(_ context.Context, prompt string, params generation.Params) (string, error) {
	g.prompt, g.params = prompt, params
	return g.out, g.err
}

func quietLog() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func TestBuildPrompt_Layout(t *testing.T) {
	got := BuildPrompt("What is X?", []string{"chunk one", "chunk two"})
	want := "<|begin_of_text|><|start_header_id|>system<|end_header_id|>\n\n" + SystemPrompt +
		"<|eot_id|><|start_header_id|>user<|end_header_id|>\n\nContext:\nchunk one\n\nchunk two\n\nQuery: What is X?" +
		"<|eot_id|><|start_header_id|>assistant<|end_header_id|>\n\n"
	if got != want {
		t.Fatalf("BuildPrompt() =\n%q\nwant\n%q", got, want)
	}
}

func TestExtractAnswer(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"echoed prompt", BuildPrompt("q", []string{"c"}) + "  The answer.<|eot_id|>", "The answer."},
		{"completion only", "\n\nJust the reply. ", "Just the reply."},
		{"several markers", "a" + AssistantMarker + "first" + AssistantMarker + "\nsecond", "second"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractAnswer(tt.in); got != tt.want {
				t.Errorf("ExtractAnswer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnswer_UsesGeneratorOutput(t *testing.T) {
	gen := &fakeGenerator{out: BuildPrompt("q", []string{"ctx"}) + "Grounded reply<|eot_id|>"}
	a := New(gen, generation.DefaultParams(), quietLog())

	got := a.Answer(context.Background(), "q", []string{"ctx"})
	if got != "Grounded reply" {
		t.Fatalf("Answer() = %q", got)
	}
	if !strings.Contains(gen.prompt, "Context:\nctx\n\nQuery: q") {
		t.Errorf("prompt missing context block: %q", gen.prompt)
	}
	if gen.params != generation.DefaultParams() {
		t.Errorf("unexpected params %+v", gen.params)
	}
}

func TestAnswer_GenerationFailure(t *testing.T) {
	a := New(&fakeGenerator{err: errors.New("timeout")}, generation.DefaultParams(), quietLog())
	got := a.Answer(context.Background(), "q", nil)
	if got != "Error: Failed to generate summary. timeout" {
		t.Fatalf("Answer() = %q", got)
	}
}

func TestAnswer_Unavailable(t *testing.T) {
	a := Unavailable(errors.New("gated"), quietLog())
	if a.Available() {
		t.Fatalf("expected unavailable answerer")
	}
	if got := a.Answer(context.Background(), "q", []string{"c"}); got != UnavailableMessage {
		t.Fatalf("Answer() = %q", got)
	}
}
