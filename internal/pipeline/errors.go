package pipeline

import (
	"errors"

	"github.com/dojosearch/dojosearch/internal/llm"
)

// RetrievalError means the embedding provider or vector index was
// unreachable after exhausting the retry budget. No result was computed and
// nothing was cached.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return "retrieval failed: " + e.Err.Error()
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may usefully retry the invocation.
func (e *RetrievalError) Retryable() bool {
	return !errors.Is(e.Err, llm.ErrFatalAPI)
}

// GenerationError means the answer generator failed. Generation is
// cost-bearing and is never retried automatically.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may usefully retry the invocation.
func (e *GenerationError) Retryable() bool {
	return !errors.Is(e.Err, llm.ErrFatalAPI)
}

// Retryable reports whether an invocation error is worth retrying from the
// caller's side.
func Retryable(err error) bool {
	var re *RetrievalError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Retryable()
	}
	return false
}
