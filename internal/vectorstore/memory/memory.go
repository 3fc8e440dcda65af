package memory

import (
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/vectorstore"
)

// Index is an exact in-memory vector index using brute-force squared
// Euclidean distance. It is immutable after Build and safe for concurrent
// searches.
type Index struct {
	dimension int
	vectors   [][]float32
}

var _ domain.VectorIndex = (*Index)(nil)

// Builder builds memory indexes.
var Builder vectorstore.Builder = vectorstore.BuilderFunc(func(vectors [][]float32) (domain.VectorIndex, error) {
	return Build(vectors)
})

// Build copies vectors into a new index. All vectors must share one
// dimension. An empty input gives an empty index.
func Build(vectors [][]float32) (*Index, error) {
	idx := &Index{}
	if len(vectors) == 0 {
		return idx, nil
	}
	idx.dimension = len(vectors[0])
	if idx.dimension == 0 {
		return nil, fmt.Errorf("%w: vectors have no components", domain.ErrDimensionMismatch)
	}
	idx.vectors = make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != idx.dimension {
			return nil, fmt.Errorf("%w: vector %d has %d components, want %d",
				domain.ErrDimensionMismatch, i, len(v), idx.dimension)
		}
		idx.vectors[i] = append([]float32(nil), v...)
	}
	return idx, nil
}

func (s *Index) Len() int { return len(s.vectors) }

func (s *Index) Dimension() int { return s.dimension }

// Search returns the min(topK, Len) nearest vectors in ascending distance.
// Equal distances are ordered by position.
func (s *Index) Search(vector []float32, topK int) ([]domain.Hit, error) {
	if len(s.vectors) == 0 || topK <= 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d components, index has %d",
			domain.ErrDimensionMismatch, len(vector), s.dimension)
	}
	dists := make([]float64, len(s.vectors))
	for i := range s.vectors {
		dists[i] = squaredL2(s.vectors[i], vector)
	}
	idxs := argsortAsc(dists)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	hits := make([]domain.Hit, topK)
	for i := 0; i < topK; i++ {
		hits[i] = domain.Hit{Position: idxs[i], Distance: dists[idxs[i]]}
	}
	return hits, nil
}

func squaredL2(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func argsortAsc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

// less orders by value, then by position.
func less(vals []float64, a, b int) bool {
	if vals[a] != vals[b] {
		return vals[a] < vals[b]
	}
	return a < b
}

func quicksort(idxs []int, vals []float64, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := idxs[(lo+hi)/2]
	for i <= j {
		for less(vals, idxs[i], pivot) {
			i++
		}
		for less(vals, pivot, idxs[j]) {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
