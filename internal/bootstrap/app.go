// Package bootstrap assembles the pipeline components from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/embedding"
	hfembed "docqa/internal/embedding/huggingface"
	ollamaembed "docqa/internal/embedding/ollama"
	openaiembed "docqa/internal/embedding/openai"
	"docqa/internal/embedding/tfidf"
	"docqa/internal/extract"
	"docqa/internal/generation"
	hfgen "docqa/internal/generation/huggingface"
	ollamagen "docqa/internal/generation/ollama"
	openaigen "docqa/internal/generation/openai"
	"docqa/internal/logging"
	"docqa/internal/service"
	"docqa/internal/summarizer"
	"docqa/internal/vectorstore/memory"
)

// checkTimeout bounds each model availability check at startup.
const checkTimeout = 15 * time.Second

type App struct {
	Config    *config.AppConfig
	Logger    *logrus.Logger
	Embedder  embedding.Embedder
	Answerer  *answer.Answerer
	Service   *service.RAGService
	StartedAt time.Time
}

// New builds every component. A config that fails validation or an
// embedder that cannot be reached is fatal. A generator that cannot be
// reached yields an answerer in the unavailable state.
func New(ctx context.Context, cfg *config.AppConfig, logger *logrus.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.Component(logger, "bootstrap")

	emb, err := NewEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load embedder: %w", err)
	}
	log.WithField("embedder", emb.Name()).Info("embedder ready")

	var ans *answer.Answerer
	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("generator unavailable; summaries are disabled")
		ans = answer.Unavailable(err, logrus.NewEntry(logger))
	} else {
		log.WithField("generator", gen.Name()).Info("generator ready")
		ans = answer.New(gen, SamplingParams(cfg), logrus.NewEntry(logger))
	}

	svc := service.NewRAGService(service.Options{
		Extractor:           extract.New(),
		Chunker:             chunker.NewRecursiveChunker(cfg.Chunker.MaxSize, cfg.Chunker.Overlap, cfg.Chunker.MinKeepLen),
		Embedder:            emb,
		Builder:             memory.Builder,
		Answerer:            ans,
		Summarizer:          summarizer.NewFrequencySummarizer(),
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
		MaxTopK:             cfg.Retrieval.MaxTopK,
		Logger:              logrus.NewEntry(logger),
	})
	return &App{
		Config:    cfg,
		Logger:    logger,
		Embedder:  emb,
		Answerer:  ans,
		Service:   svc,
		StartedAt: time.Now(),
	}, nil
}

// SamplingParams returns the generation parameters from cfg.
func SamplingParams(cfg *config.AppConfig) generation.Params {
	return generation.Params{
		MaxNewTokens: cfg.Generator.MaxNewTokens,
		Temperature:  cfg.Generator.Temperature,
		TopP:         cfg.Generator.TopP,
	}
}

// NewEmbedder creates the configured embedder, verifies it is reachable and
// wraps it in a Batcher.
func NewEmbedder(ctx context.Context, cfg *config.AppConfig) (embedding.Embedder, error) {
	ec := cfg.Embedder
	timeout := time.Duration(ec.TimeoutSecs) * time.Second
	var emb embedding.Embedder
	switch ec.Type {
	case "tfidf":
		emb = tfidf.NewEmbedder()
	case "huggingface":
		emb = hfembed.New(hfembed.Config{
			Model:   ec.Model,
			Token:   cfg.HFToken(),
			BaseURL: ec.BaseURL,
			HubURL:  cfg.Generator.HubURL,
			Timeout: timeout,
		})
	case "openai":
		client, err := openaiembed.NewClient(openaiembed.Config{
			BaseURL: ec.BaseURL,
			APIKey:  cfg.OpenAIAPIKey(),
			Model:   ec.Model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		emb = client
	case "ollama":
		m, err := ollamaembed.New(ec.Model, ec.BaseURL, timeout)
		if err != nil {
			return nil, &domain.ModelUnavailableError{Model: ec.Model, Err: err}
		}
		emb = m
	default:
		return nil, fmt.Errorf("%w: unknown embedder: %s", domain.ErrInvalidConfig, ec.Type)
	}
	if err := check(ctx, emb); err != nil {
		return nil, err
	}
	return embedding.NewBatcher(emb, ec.BatchSize, ec.Concurrency), nil
}

// NewGenerator creates the configured generator and verifies it is
// reachable. Failures are ModelUnavailableErrors.
func NewGenerator(ctx context.Context, cfg *config.AppConfig) (generation.Generator, error) {
	gc := cfg.Generator
	timeout := time.Duration(gc.TimeoutSecs) * time.Second
	var gen generation.Generator
	switch gc.Type {
	case "huggingface":
		gen = hfgen.New(hfgen.Config{
			Model:   gc.Model,
			Token:   cfg.HFToken(),
			BaseURL: gc.BaseURL,
			HubURL:  gc.HubURL,
			Timeout: timeout,
		})
	case "openai":
		client, err := openaigen.NewClient(openaigen.Config{
			BaseURL: gc.BaseURL,
			APIKey:  cfg.OpenAIAPIKey(),
			Model:   gc.Model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		gen = client
	case "ollama":
		o, err := ollamagen.New(gc.Model, gc.BaseURL, cfg.Device == config.DeviceCPU, timeout)
		if err != nil {
			return nil, &domain.ModelUnavailableError{Model: gc.Model, Err: err}
		}
		gen = o
	default:
		return nil, &domain.ModelUnavailableError{Model: gc.Model, Err: fmt.Errorf("unknown generator: %s", gc.Type)}
	}
	if err := check(ctx, gen); err != nil {
		return nil, err
	}
	return gen, nil
}

type checker interface {
	Check(ctx context.Context) error
}

func check(ctx context.Context, model any) error {
	c, ok := model.(checker)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return c.Check(ctx)
}
