package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestModelUnavailableError_MatchesSentinel(t *testing.T) {
	cause := errors.New("401 Unauthorized")
	err := fmt.Errorf("load generator: %w", &ModelUnavailableError{Model: "llama", Err: cause})

	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected errors.Is to match ErrModelUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected error to unwrap to its cause")
	}
	var mu *ModelUnavailableError
	if !errors.As(err, &mu) || mu.Model != "llama" {
		t.Fatalf("expected errors.As to recover the model name, got %+v", mu)
	}
}
