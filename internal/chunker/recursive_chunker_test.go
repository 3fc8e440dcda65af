package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"docqa/internal/domain"
)

func TestNormalize_CollapsesNewlineRuns(t *testing.T) {
	got := Normalize("  Paragraph one.\n\n\nParagraph two.\n\n")
	want := "Paragraph one.\nParagraph two."
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}

	c := NewRecursiveChunker(DefaultMaxSize, DefaultOverlap, DefaultMinKeepLen)
	chunks := c.Split("Paragraph one.\n\n\nParagraph two.")
	if len(chunks) != 1 || chunks[0] != want {
		t.Fatalf("expected single normalized chunk %q, got %q", want, chunks)
	}
}

func TestSplit_NoNaturalBreaks(t *testing.T) {
	text := strings.Repeat("abcdefghij", 120)
	c := NewRecursiveChunker(500, 50, 10)

	chunks := c.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	want := []string{text[0:500], text[450:950], text[900:1200]}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: got %d runes starting %q, want %d runes starting %q",
				i, len(chunks[i]), chunks[i][:10], len(want[i]), want[i][:10])
		}
	}
	for i := 0; i+1 < len(chunks); i++ {
		tail := chunks[i][len(chunks[i])-50:]
		head := chunks[i+1][:50]
		if tail != head {
			t.Errorf("chunks %d and %d do not share 50 characters: %q vs %q", i, i+1, tail, head)
		}
	}
}

func TestSplit_PrefersSentenceBoundaries(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&sb, "Sentence number %02d is here. ", i)
	}
	c := NewRecursiveChunker(60, 0, 10)

	chunks := c.Split(sb.String())
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks of two sentences, got %d: %q", len(chunks), chunks)
	}
	for i, ch := range chunks {
		if !strings.HasSuffix(ch, ".") {
			t.Errorf("chunk %d does not end on a sentence boundary: %q", i, ch)
		}
		if utf8.RuneCountInString(ch) > 60 {
			t.Errorf("chunk %d exceeds max size: %d", i, utf8.RuneCountInString(ch))
		}
	}
}

func TestSplit_DropsShortFragmentsAndRenumbers(t *testing.T) {
	text := strings.Repeat("a", 39) + "\nok\n" + strings.Repeat("b", 39)
	c := NewRecursiveChunker(40, 0, 10)

	chunks, err := c.Chunk(domain.Document{ID: "doc", Content: text})
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks after dropping fragment, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Text != strings.Repeat("a", 39) || chunks[1].Text != strings.Repeat("b", 39) {
		t.Errorf("unexpected chunk texts: %q, %q", chunks[0].Text, chunks[1].Text)
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if ch.ChunkID != fmt.Sprintf("doc:%d", i) {
			t.Errorf("chunk %d has id %q", i, ch.ChunkID)
		}
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c := NewRecursiveChunker(DefaultMaxSize, DefaultOverlap, DefaultMinKeepLen)
	chunks, err := c.Chunk(domain.Document{ID: "empty", Content: " \n\n \t"})
	if err != nil {
		t.Fatalf("expected no error for empty input, got %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected 0 chunks for empty input, got %d", len(chunks))
	}
}

func TestSplit_DeterministicAndCoversWords(t *testing.T) {
	var words []string
	for i := 0; i < 300; i++ {
		words = append(words, fmt.Sprintf("word%03d", i))
	}
	text := strings.Join(words, " ")
	c := NewRecursiveChunker(DefaultMaxSize, DefaultOverlap, DefaultMinKeepLen)

	first := c.Split(text)
	second := c.Split(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("chunking is not deterministic")
	}
	if len(first) < 2 {
		t.Fatalf("expected several chunks, got %d", len(first))
	}

	joined := strings.Join(first, " ")
	for _, w := range words {
		if !strings.Contains(joined, w) {
			t.Errorf("word %q lost during chunking", w)
		}
	}
	for i, ch := range first {
		if n := utf8.RuneCountInString(ch); n > DefaultMaxSize {
			t.Errorf("chunk %d has %d runes, above max", i, n)
		}
	}
	for i := 0; i+1 < len(first); i++ {
		next := strings.Fields(first[i+1])[0]
		if !strings.Contains(first[i], next) {
			t.Errorf("chunk %d does not overlap with chunk %d (missing %q)", i, i+1, next)
		}
	}
}

func TestNewRecursiveChunker_NormalizesParameters(t *testing.T) {
	c := NewRecursiveChunker(0, -1, -5)
	if c.maxSize != DefaultMaxSize || c.overlap != 0 || c.minKeepLen != 0 {
		t.Fatalf("unexpected parameters: %+v", c)
	}
	c = NewRecursiveChunker(100, 100, 10)
	if c.overlap != 50 {
		t.Fatalf("expected overlap clamped to 50, got %d", c.overlap)
	}
}
