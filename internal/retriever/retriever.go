package retriever

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/domain"
)

// Retrieve embeds query and returns up to topK chunks ordered by ascending
// distance. An empty query or empty index yields no results.
func Retrieve(ctx context.Context, query string, embedder domain.Embedder, index domain.VectorIndex, chunks []domain.Chunk, topK int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" || index == nil || index.Len() == 0 || topK <= 0 {
		return nil, nil
	}
	vecs, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vecs))
	}
	if len(vecs[0]) != index.Dimension() {
		return nil, fmt.Errorf("%w: query has %d components, index has %d",
			domain.ErrDimensionMismatch, len(vecs[0]), index.Dimension())
	}

	hits, err := index.Search(vecs[0], topK)
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(chunks) {
			return nil, fmt.Errorf("%w: position %d, %d chunks", domain.ErrIndexOutOfRange, h.Position, len(chunks))
		}
		results = append(results, domain.SearchResult{Chunk: chunks[h.Position], Distance: h.Distance})
	}
	return results, nil
}

// Texts returns the chunk texts of results in order.
func Texts(results []domain.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Chunk.Text
	}
	return out
}
