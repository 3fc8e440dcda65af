package domain

import "context"

// Document is the raw text extracted from one ingested file.
type Document struct {
	ID      string
	Name    string
	Content string
}

// Chunk is a bounded part of a document used for retrieval. Index is the
// position of the chunk in the ordered chunk sequence and the key the
// vector index returns.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// Hit is a raw index match: a position in the index and its squared
// Euclidean distance to the query.
type Hit struct {
	Position int
	Distance float64
}

// SearchResult is a chunk paired with its distance to the query.
// Lower distance means more relevant.
type SearchResult struct {
	Chunk    Chunk
	Distance float64
}

// Extractor turns a file payload into plain text.
type Extractor interface {
	Extract(data []byte, ext string) (string, error)
}

// Chunker splits normalized document text into ordered chunks.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder maps texts to fixed-width vectors, one per input, order preserved.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex is an immutable nearest-neighbor index over chunk vectors.
type VectorIndex interface {
	Len() int
	Dimension() int
	Search(vector []float32, topK int) ([]Hit, error)
}

// Answerer produces a grounded answer for a query from context chunks.
// Generation failures are reported inside the returned text.
type Answerer interface {
	Answer(ctx context.Context, query string, contextChunks []string) string
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
