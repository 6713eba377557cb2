package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a missing entity and one the acting user does not own.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedFormat means no extractor is registered for a format tag.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEmbeddingUnavailable means the embedding service returned no vectors.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrCompletionFailed means a completion, OCR or transcription call errored.
	ErrCompletionFailed = errors.New("completion failed")
	// ErrInvalidTransition means a status change is not legal from the current state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CompletionError records which external operation failed.
type CompletionError struct {
	Op  string
	Err error
}

func (e *CompletionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrCompletionFailed)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrCompletionFailed, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

func (e *CompletionError) Is(target error) bool { return target == ErrCompletionFailed }

func Completion(op string, err error) error {
	return &CompletionError{Op: op, Err: err}
}

func UnsupportedFormat(format string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func InvalidTransition(entity, from, to string) error {
	return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, entity, from, to)
}
