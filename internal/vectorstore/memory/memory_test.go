package memory

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"docqa/internal/domain"
)

func TestSearch_SelfMatchIsNearest(t *testing.T) {
	vectors := [][]float32{{0, 0}, {1, 0}, {0, 3}, {5, 5}}
	idx, err := Build(vectors)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for i, v := range vectors {
		hits, err := idx.Search(v, 1)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(hits) != 1 || hits[0].Position != i || hits[0].Distance != 0 {
			t.Errorf("vector %d: expected self match at distance 0, got %+v", i, hits)
		}
	}
}

func TestSearch_AscendingSquaredDistance(t *testing.T) {
	idx, err := Build([][]float32{{3, 0}, {1, 0}, {2, 0}, {-1, 0}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	hits, err := idx.Search([]float32{0, 0}, 4)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []domain.Hit{
		{Position: 1, Distance: 1},
		{Position: 3, Distance: 1},
		{Position: 2, Distance: 4},
		{Position: 0, Distance: 9},
	}
	if !reflect.DeepEqual(hits, want) {
		t.Fatalf("Search() = %+v, want %+v", hits, want)
	}
}

func TestSearch_CapsAtIndexSize(t *testing.T) {
	idx, _ := Build([][]float32{{1}, {2}, {3}})
	hits, err := idx.Search([]float32{0}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
}

func TestSearch_MatchesExhaustiveScanAndIsRepeatable(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vectors := make([][]float32, 200)
	for i := range vectors {
		vectors[i] = []float32{rng.Float32(), rng.Float32(), rng.Float32()}
	}
	idx, _ := Build(vectors)
	query := []float32{0.5, 0.5, 0.5}

	first, _ := idx.Search(query, 10)
	second, _ := idx.Search(query, 10)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated searches differ")
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].Distance > first[i].Distance {
			t.Fatalf("hits not sorted at %d: %+v", i, first)
		}
	}
	worst := first[len(first)-1].Distance
	closer := 0
	for _, v := range vectors {
		if squaredL2(v, query) < worst {
			closer++
		}
	}
	if closer > 9 {
		t.Fatalf("found %d vectors closer than the last hit; search is not exact", closer)
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx, _ := Build([][]float32{{1, 2, 3}})
	if _, err := idx.Search([]float32{1, 2}, 1); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBuild_RejectsMixedDimensions(t *testing.T) {
	if _, err := Build([][]float32{{1, 2}, {1}}); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBuild_RejectsZeroWidthVectors(t *testing.T) {
	if _, err := Build([][]float32{{}, {}}); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx, err := Build(nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	hits, err := idx.Search([]float32{1, 2}, 3)
	if err != nil || len(hits) != 0 {
		t.Fatalf("expected no hits and no error, got %+v, %v", hits, err)
	}
	if idx.Len() != 0 {
		t.Fatalf("expected empty index")
	}
}

func TestBuild_CopiesInput(t *testing.T) {
	v := [][]float32{{1, 1}}
	idx, _ := Build(v)
	v[0][0] = 100
	hits, _ := idx.Search([]float32{1, 1}, 1)
	if hits[0].Distance != 0 {
		t.Fatalf("index was mutated through caller slice")
	}
}
