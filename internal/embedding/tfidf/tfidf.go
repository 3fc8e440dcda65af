package tfidf

import (
	"context"
	"errors"
	"math"
	"sort"

	"docqa/internal/embedding"
	"docqa/internal/textutil"
)

// Embedder implements a simple TF-IDF vectorizer.
// The zero vocabulary is unfitted; Fit builds a fitted copy from a corpus.
type Embedder struct {
	vocabulary map[string]int
	idf        []float64
}

var (
	_ embedding.Embedder = (*Embedder)(nil)
	_ embedding.Fitter   = (*Embedder)(nil)
)

// NewEmbedder creates an unfitted TF-IDF embedder.
func NewEmbedder() *Embedder { return &Embedder{} }

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Fitted reports whether the embedder has a vocabulary.
func (e *Embedder) Fitted() bool { return len(e.idf) > 0 }

// Dimension returns the vocabulary size, or 0 before fitting.
func (e *Embedder) Dimension() int { return len(e.idf) }

// Fit builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Fit(_ context.Context, corpus []string) (embedding.Embedder, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus for TF-IDF fit")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return nil, errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}
	fitted := &Embedder{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		fitted.vocabulary[term] = i
		// Smoothed IDF
		fitted.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return fitted, nil
}

// Embed computes L2-normalized TF-IDF vectors for texts. Texts with no
// known terms map to the zero vector.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if !e.Fitted() {
		return nil, errors.New("tfidf embedder not fitted")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *Embedder) embed(text string) []float32 {
	vec := make([]float32, len(e.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	weights := make(map[int]float64, len(tf))
	norm := 0.0
	for idx, count := range tf {
		w := float64(count) / float64(total) * e.idf[idx]
		weights[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for idx, w := range weights {
		vec[idx] = float32(w / norm)
	}
	return vec
}

func tokenize(text string) []string {
	return textutil.ContentWords(text)
}
