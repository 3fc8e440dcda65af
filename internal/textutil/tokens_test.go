package textutil

import (
	"reflect"
	"testing"
)

func TestContentWords(t *testing.T) {
	got := ContentWords("The Cat's toy, and 42 DOGS!")
	want := []string{"cat's", "toy", "dogs"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ContentWords() = %v, want %v", got, want)
	}
	if len(Words("123 !!")) != 0 {
		t.Fatalf("expected no words in digits and punctuation")
	}
}
