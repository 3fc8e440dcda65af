package embedding

import (
	"context"

	"docqa/internal/domain"
)

// Embedder converts free text into numeric vector representations.
type Embedder = domain.Embedder

// Fitter is implemented by embedders that must learn from the corpus
// before they can embed. Fit returns a new fitted embedder and leaves the
// receiver untouched.
type Fitter interface {
	Fit(ctx context.Context, corpus []string) (Embedder, error)
}

// Checker is implemented by remote embedders that can verify the model is
// reachable before first use.
type Checker interface {
	Check(ctx context.Context) error
}

// Prepare fits e on corpus when it is a Fitter and returns e otherwise.
func Prepare(ctx context.Context, e Embedder, corpus []string) (Embedder, error) {
	if f, ok := e.(Fitter); ok {
		return f.Fit(ctx, corpus)
	}
	if b, ok := e.(*Batcher); ok {
		if f, ok := b.inner.(Fitter); ok {
			fitted, err := f.Fit(ctx, corpus)
			if err != nil {
				return nil, err
			}
			return b.with(fitted), nil
		}
	}
	return e, nil
}
