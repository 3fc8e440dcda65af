// Package textutil holds the word tokenizer shared by the TF-IDF embedder
// and the extractive summarizer.
package textutil

import (
	"regexp"
	"strings"
)

var (
	wordPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	stopwords   = toSet(
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "don", "should", "now",
	)
)

// Words returns the lower-cased letter runs of text, apostrophes kept.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// ContentWords is Words without English stopwords.
func ContentWords(text string) []string {
	raw := Words(text)
	out := raw[:0]
	for _, w := range raw {
		if !IsStopword(w) {
			out = append(out, w)
		}
	}
	return out
}

func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
