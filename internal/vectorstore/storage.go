package vectorstore

import "docqa/internal/domain"

// Builder creates an immutable index from one vector per chunk. Position i
// in the index corresponds to chunk i.
type Builder interface {
	Build(vectors [][]float32) (domain.VectorIndex, error)
}

// BuilderFunc adapts a plain function to Builder.
type BuilderFunc func(vectors [][]float32) (domain.VectorIndex, error)

func (f BuilderFunc) Build(vectors [][]float32) (domain.VectorIndex, error) { return f(vectors) }
