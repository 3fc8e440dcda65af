package chunker

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"docqa/internal/domain"
)

const (
	DefaultMaxSize    = 500
	DefaultOverlap    = 50
	DefaultMinKeepLen = 10
)

// DefaultSeparators go from paragraph breaks down to single characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

var newlineRuns = regexp.MustCompile(`\n+`)

// RecursiveChunker splits text on the coarsest separator present, merging
// pieces into chunks of at most maxSize runes and only falling back to
// finer separators for pieces that are still too long. Adjacent chunks
// share up to overlap runes.
type RecursiveChunker struct {
	maxSize    int
	overlap    int
	minKeepLen int
	separators []string
}

func NewRecursiveChunker(maxSize, overlap, minKeepLen int) *RecursiveChunker {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize / 2
	}
	if minKeepLen < 0 {
		minKeepLen = 0
	}
	return &RecursiveChunker{
		maxSize:    maxSize,
		overlap:    overlap,
		minKeepLen: minKeepLen,
		separators: DefaultSeparators,
	}
}

// Normalize collapses newline runs to one newline and trims the text.
func Normalize(text string) string {
	return strings.TrimSpace(newlineRuns.ReplaceAllString(text, "\n"))
}

func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	texts := c.Split(document.Content)
	if len(texts) == 0 {
		return nil, nil
	}
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(i),
			Text:       text,
			Index:      i,
		}
	}
	return chunks, nil
}

// Split normalizes text and returns the surviving chunk texts in order.
// Chunks whose trimmed length is not above minKeepLen are dropped.
func (c *RecursiveChunker) Split(text string) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}
	pieces := c.split(text, c.separators)
	kept := pieces[:0]
	for _, p := range pieces {
		if utf8.RuneCountInString(strings.TrimSpace(p)) > c.minKeepLen {
			kept = append(kept, p)
		}
	}
	return kept
}

func (c *RecursiveChunker) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			finer = separators[i+1:]
			break
		}
	}

	var out, good []string
	for _, piece := range splitKeepEnd(text, separator) {
		if utf8.RuneCountInString(piece) < c.maxSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, c.merge(good)...)
			good = nil
		}
		if len(finer) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, c.split(piece, finer)...)
		}
	}
	if len(good) > 0 {
		out = append(out, c.merge(good)...)
	}
	return out
}

// merge packs pieces greedily into chunks, carrying the trailing overlap
// of each emitted chunk into the next one.
func (c *RecursiveChunker) merge(pieces []string) []string {
	var chunks, current []string
	total := 0
	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if total+n > c.maxSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > c.overlap || (total+n > c.maxSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeepEnd splits after each separator so every piece keeps the
// separator that ended it. An empty separator splits into runes.
func splitKeepEnd(text, separator string) []string {
	if separator == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.SplitAfter(text, separator)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
