package answer

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"docqa/internal/domain"
	"docqa/internal/generation"
	"docqa/internal/logging"
)

const (
	SystemPrompt = "You are a helpful assistant. Your task is to answer the user's query based *only* on the provided context. " +
		"If the context does not contain the answer, say that you cannot answer based on the given information."

	// AssistantMarker opens the assistant turn in the chat template.
	AssistantMarker = "<|start_header_id|>assistant<|end_header_id|>"
	endOfTurn       = "<|eot_id|>"

	UnavailableMessage = "Error: The summarization model could not be loaded. Please check the terminal for errors."
	failurePrefix      = "Error: Failed to generate summary. "
)

// Answerer builds a grounded chat prompt and extracts the assistant reply.
// Without a generator it is unavailable and answers with a fixed message.
type Answerer struct {
	gen    generation.Generator
	params generation.Params
	cause  error
	log    *logrus.Entry
}

var _ domain.Answerer = (*Answerer)(nil)

func New(gen generation.Generator, params generation.Params, log *logrus.Entry) *Answerer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Answerer{gen: gen, params: params, log: logging.Component(log, "answerer")}
}

// Unavailable returns an answerer whose model failed to initialize.
func Unavailable(cause error, log *logrus.Entry) *Answerer {
	a := New(nil, generation.Params{}, log)
	a.cause = cause
	return a
}

// Available reports whether a generator is loaded.
func (a *Answerer) Available() bool { return a.gen != nil }

// Cause returns the initialization error of an unavailable answerer.
func (a *Answerer) Cause() error { return a.cause }

// Answer never fails; problems are reported in the returned text.
func (a *Answerer) Answer(ctx context.Context, query string, contextChunks []string) string {
	if a.gen == nil {
		return UnavailableMessage
	}
	prompt := BuildPrompt(query, contextChunks)
	a.log.WithFields(logrus.Fields{
		"model":          a.gen.Name(),
		"context_chunks": len(contextChunks),
		"prompt_chars":   len(prompt),
	}).Info("generating answer")

	out, err := a.gen.Generate(ctx, prompt, a.params)
	if err != nil {
		a.log.WithError(err).Error("generation failed")
		return failurePrefix + err.Error()
	}
	return ExtractAnswer(out)
}

// BuildPrompt renders the Llama 3 chat template with a system turn, a
// user turn holding the context and query, and an open assistant turn.
func BuildPrompt(query string, contextChunks []string) string {
	var sb strings.Builder
	sb.WriteString("<|begin_of_text|>")
	sb.WriteString("<|start_header_id|>system<|end_header_id|>\n\n")
	sb.WriteString(SystemPrompt)
	sb.WriteString(endOfTurn)
	sb.WriteString("<|start_header_id|>user<|end_header_id|>\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(contextChunks, "\n\n"))
	sb.WriteString("\n\nQuery: ")
	sb.WriteString(query)
	sb.WriteString(endOfTurn)
	sb.WriteString(AssistantMarker)
	sb.WriteString("\n\n")
	return sb.String()
}

// ExtractAnswer keeps the text after the last assistant marker, or the
// whole output when the model did not echo the prompt.
func ExtractAnswer(output string) string {
	if i := strings.LastIndex(output, AssistantMarker); i >= 0 {
		output = output[i+len(AssistantMarker):]
	}
	output = strings.TrimSpace(output)
	output = strings.TrimSuffix(output, endOfTurn)
	return strings.TrimSpace(output)
}
