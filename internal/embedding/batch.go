package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize   = 32
	DefaultConcurrency = 4
)

// Batcher splits large inputs into fixed-size batches and embeds several
// batches at once. Output order always matches input order.
type Batcher struct {
	inner       Embedder
	size        int
	concurrency int
}

func NewBatcher(inner Embedder, size, concurrency int) *Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Batcher{inner: inner, size: size, concurrency: concurrency}
}

func (b *Batcher) Name() string { return b.inner.Name() }

// Inner returns the wrapped embedder.
func (b *Batcher) Inner() Embedder { return b.inner }

func (b *Batcher) with(inner Embedder) *Batcher {
	return &Batcher{inner: inner, size: b.size, concurrency: b.concurrency}
}

func (b *Batcher) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) <= b.size {
		return b.embedBatch(ctx, texts)
	}

	out := make([][]float32, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for start := 0; start < len(texts); start += b.size {
		end := min(start+b.size, len(texts))
		g.Go(func() error {
			vecs, err := b.embedBatch(ctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("batch %d-%d: %w", start, end, err)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Batcher) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := b.inner.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%s returned %d vectors for %d texts", b.inner.Name(), len(vecs), len(texts))
	}
	return vecs, nil
}
