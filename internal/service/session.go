package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"docqa/internal/domain"
	"docqa/internal/extract"
	"docqa/internal/retriever"
)

// State is the position of a session in its lifecycle.
type State int

const (
	StateEmpty State = iota
	StateIngested
	StateQueried
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateIngested:
		return "ingested"
	case StateQueried:
		return "queried"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Retrieval is the last successful search of a session.
type Retrieval struct {
	Query   string                `json:"query"`
	TopK    int                   `json:"top_k"`
	Results []domain.SearchResult `json:"results"`
}

// Summary is a generated answer and the query it was built for.
type Summary struct {
	Query  string
	Answer string
}

// Info is a read-only snapshot of a session.
type Info struct {
	ID        string        `json:"id"`
	State     State         `json:"state"`
	Document  *IngestResult `json:"document,omitempty"`
	LastQuery string        `json:"last_query,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Session owns the document, chunks, index and last retrieval for one
// user. Operations are serialized: each runs to completion before the
// next one starts.
type Session struct {
	id  string
	svc *RAGService

	mu        sync.Mutex
	corpus    *corpus
	last      *Retrieval
	updatedAt time.Time
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() State {
	switch {
	case s.corpus == nil:
		return StateEmpty
	case s.last == nil:
		return StateIngested
	}
	return StateQueried
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := Info{ID: s.id, State: s.state(), UpdatedAt: s.updatedAt}
	if s.corpus != nil {
		r := s.corpus.result
		info.Document = &r
	}
	if s.last != nil {
		info.LastQuery = s.last.Query
	}
	return info
}

// Chunks returns the chunks of the ingested document.
func (s *Session) Chunks() []domain.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.corpus == nil {
		return nil
	}
	return s.corpus.chunks
}

// Reset drops the document, index and retrieval.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.corpus = nil
	s.last = nil
	s.updatedAt = time.Now()
}

// Ingest replaces the session document with the file name/data. An
// unsupported file type is rejected before anything changes. Any later
// failure leaves the session empty.
func (s *Session) Ingest(ctx context.Context, name string, data []byte) (IngestResult, error) {
	if err := extract.CheckType(extract.ExtensionOf(name)); err != nil {
		return IngestResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	c, err := s.svc.build(ctx, name, data)
	if err != nil {
		s.svc.log.WithError(err).WithFields(logrus.Fields{"session": s.id, "file": name}).Error("ingest failed")
		return IngestResult{}, err
	}
	s.corpus = c
	s.updatedAt = time.Now()
	s.svc.log.WithFields(logrus.Fields{"session": s.id, "file": name, "chunks": len(c.chunks)}).Info("document ingested")
	return c.result, nil
}

// Search returns up to topK chunks nearest to query and remembers them for
// Summarize. An empty session yields no results and stays empty.
func (s *Session) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if err := s.svc.checkTopK(topK); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.corpus == nil {
		return nil, nil
	}
	results, err := s.svc.retrieve(ctx, s.corpus, query, topK)
	if err != nil {
		return nil, err
	}
	s.last = &Retrieval{Query: query, TopK: topK, Results: results}
	s.updatedAt = time.Now()
	return results, nil
}

// LastRetrieval returns the most recent search, or nil.
func (s *Session) LastRetrieval() *Retrieval {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

// Summarize answers the last query from its retrieved chunks. Generation
// problems come back as text, not as an error.
func (s *Session) Summarize(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return Summary{}, domain.ErrNoRetrievalYet
	}
	s.svc.log.WithFields(logrus.Fields{"session": s.id, "context_chunks": len(s.last.Results)}).Info("summarizing")
	query := s.last.Query
	return Summary{Query: query, Answer: s.svc.answerer.Answer(ctx, query, retriever.Texts(s.last.Results))}, nil
}
