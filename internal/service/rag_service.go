package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/sirupsen/logrus"

	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/embedding"
	"docqa/internal/extract"
	"docqa/internal/logging"
	"docqa/internal/retriever"
	"docqa/internal/vectorstore"
)

const DefaultMaxTopK = 10

// IngestResult describes a successfully indexed document.
type IngestResult struct {
	File       string `json:"file"`
	Characters int    `json:"characters"`
	Chunks     int    `json:"chunks"`
	Dimension  int    `json:"dimension"`
	Overview   string `json:"overview"`
}

// corpus is everything built from one document. It is created whole by
// build and never modified afterwards.
type corpus struct {
	document domain.Document
	chunks   []domain.Chunk
	index    domain.VectorIndex
	// embedder is the one that produced the index vectors; queries must use
	// it so both sides share a vocabulary and dimension.
	embedder domain.Embedder
	result   IngestResult
}

// RAGService holds the stateless pipeline components shared by every
// session. Per-document state lives in Session.
type RAGService struct {
	extractor           domain.Extractor
	chunker             domain.Chunker
	embedder            domain.Embedder
	builder             vectorstore.Builder
	answerer            domain.Answerer
	summarizer          domain.Summarizer
	summaryMaxSentences int
	maxTopK             int
	log                 *logrus.Entry
}

type Options struct {
	Extractor           domain.Extractor
	Chunker             domain.Chunker
	Embedder            domain.Embedder
	Builder             vectorstore.Builder
	Answerer            domain.Answerer
	Summarizer          domain.Summarizer
	SummaryMaxSentences int
	MaxTopK             int
	Logger              *logrus.Entry
}

func NewRAGService(opts Options) *RAGService {
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = DefaultMaxTopK
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RAGService{
		extractor:           opts.Extractor,
		chunker:             opts.Chunker,
		embedder:            opts.Embedder,
		builder:             opts.Builder,
		answerer:            opts.Answerer,
		summarizer:          opts.Summarizer,
		summaryMaxSentences: opts.SummaryMaxSentences,
		maxTopK:             opts.MaxTopK,
		log:                 logging.Component(opts.Logger, "rag_service"),
	}
}

// MaxTopK is the largest top_k a search accepts.
func (s *RAGService) MaxTopK() int { return s.maxTopK }

// NewSession returns an empty session bound to this service.
func (s *RAGService) NewSession(id string) *Session {
	return &Session{id: id, svc: s}
}

// build runs extract, chunk, embed and index for one file. It touches no
// session state.
func (s *RAGService) build(ctx context.Context, name string, data []byte) (*corpus, error) {
	log := s.log.WithField("file", name)
	text, err := s.extractor.Extract(data, extract.ExtensionOf(name))
	if err != nil {
		return nil, err
	}
	text = chunker.Normalize(text)
	doc := domain.Document{ID: hashString(name + "\x00" + text), Name: name, Content: text}

	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", name, err)
	}
	log.WithFields(logrus.Fields{"characters": len(text), "chunks": len(chunks)}).Info("document chunked")

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	emb := s.embedder
	var vectors [][]float32
	if len(texts) > 0 {
		if emb, err = embedding.Prepare(ctx, s.embedder, texts); err != nil {
			return nil, fmt.Errorf("prepare embedder: %w", err)
		}
		if vectors, err = emb.Embed(ctx, texts); err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%s returned %d vectors for %d chunks", emb.Name(), len(vectors), len(texts))
		}
	}
	index, err := s.builder.Build(vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	log.WithFields(logrus.Fields{"vectors": index.Len(), "dimension": index.Dimension()}).Info("index built")

	overview := ""
	if s.summarizer != nil && text != "" {
		if overview, err = s.summarizer.Summarize(text, s.summaryMaxSentences); err != nil {
			log.WithError(err).Warn("overview failed")
			overview = ""
		}
	}
	return &corpus{
		document: doc,
		chunks:   chunks,
		index:    index,
		embedder: emb,
		result: IngestResult{
			File:       name,
			Characters: len([]rune(text)),
			Chunks:     len(chunks),
			Dimension:  index.Dimension(),
			Overview:   overview,
		},
	}, nil
}

func (s *RAGService) retrieve(ctx context.Context, c *corpus, query string, topK int) ([]domain.SearchResult, error) {
	results, err := retriever.Retrieve(ctx, query, c.embedder, c.index, c.chunks, topK)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"top_k": topK, "results": len(results)}).Info("search done")
	return results, nil
}

func (s *RAGService) checkTopK(topK int) error {
	if topK < 1 || topK > s.maxTopK {
		return fmt.Errorf("%w: %d not in [1, %d]", domain.ErrTopKOutOfRange, topK, s.maxTopK)
	}
	return nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
