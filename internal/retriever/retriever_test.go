package retriever

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docqa/internal/domain"
	"docqa/internal/vectorstore/memory"
)

// keywordEmbedder maps text to [contains "cat", contains "dog", contains "fish"].
type keywordEmbedder struct{ calls int }

func (e *keywordEmbedder) Name() string { return "keyword" }

func (e *keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 3)
		for j, kw := range []string{"cat", "dog", "fish"} {
			if strings.Contains(t, kw) {
				v[j] = 1
			}
		}
		out[i] = v
	}
	return out, nil
}

func fixture(t *testing.T) (*keywordEmbedder, domain.VectorIndex, []domain.Chunk) {
	t.Helper()
	chunks := []domain.Chunk{
		{ChunkID: "d:0", Index: 0, Text: "the cat sleeps"},
		{ChunkID: "d:1", Index: 1, Text: "a dog barks"},
		{ChunkID: "d:2", Index: 2, Text: "fish swim"},
	}
	e := &keywordEmbedder{}
	vecs, _ := e.Embed(context.Background(), []string{chunks[0].Text, chunks[1].Text, chunks[2].Text})
	idx, err := memory.Build(vecs)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	e.calls = 0
	return e, idx, chunks
}

func TestRetrieve_RanksByDistance(t *testing.T) {
	e, idx, chunks := fixture(t)
	results, err := Retrieve(context.Background(), "where is the dog", e, idx, chunks, 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ChunkID != "d:1" || results[0].Distance != 0 {
		t.Errorf("expected dog chunk first at distance 0, got %+v", results[0])
	}
	if results[1].Distance < results[0].Distance {
		t.Errorf("results not ascending: %+v", results)
	}
	if got := Texts(results); got[0] != "a dog barks" {
		t.Errorf("Texts() = %v", got)
	}
}

func TestRetrieve_CapsAtChunkCount(t *testing.T) {
	e, idx, chunks := fixture(t)
	results, err := Retrieve(context.Background(), "cat", e, idx, chunks, 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestRetrieve_EmptyQuerySkipsEmbedding(t *testing.T) {
	e, idx, chunks := fixture(t)
	results, err := Retrieve(context.Background(), "   ", e, idx, chunks, 3)
	if err != nil || len(results) != 0 {
		t.Fatalf("expected no results, got %v, %v", results, err)
	}
	if e.calls != 0 {
		t.Fatalf("embedder should not be called for an empty query")
	}
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	idx, _ := memory.Build(nil)
	results, err := Retrieve(context.Background(), "cat", &keywordEmbedder{}, idx, nil, 3)
	if err != nil || len(results) != 0 {
		t.Fatalf("expected no results, got %v, %v", results, err)
	}
}

func TestRetrieve_PositionOutOfRange(t *testing.T) {
	e, idx, chunks := fixture(t)
	_, err := Retrieve(context.Background(), "fish", e, idx, chunks[:1], 3)
	if !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

type wideEmbedder struct{}

func (wideEmbedder) Name() string { return "wide" }

func (wideEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	return [][]float32{make([]float32, 7)}, nil
}

func TestRetrieve_DimensionMismatch(t *testing.T) {
	_, idx, chunks := fixture(t)
	_, err := Retrieve(context.Background(), "cat", wideEmbedder{}, idx, chunks, 1)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}
