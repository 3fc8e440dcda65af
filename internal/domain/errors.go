package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtraction          = errors.New("text extraction failed")
	ErrDimensionMismatch   = errors.New("vector dimension mismatch")
	ErrModelUnavailable    = errors.New("model unavailable")
	ErrNoRetrievalYet      = errors.New("no retrieval yet: run a search before summarizing")
	ErrIndexOutOfRange     = errors.New("index position out of chunk range")
	ErrTopKOutOfRange      = errors.New("top_k out of range")
	ErrInvalidConfig       = errors.New("invalid config")
)

// ModelUnavailableError reports a model that failed to initialize.
type ModelUnavailableError struct {
	Model string
	Err   error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %s unavailable: %v", e.Model, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrModelUnavailable) match.
func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }
