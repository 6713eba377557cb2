package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCompletionErrorMatchesSentinelAndCause(t *testing.T) {
	err := fmt.Errorf("generate module: %w", Completion("converse", context.DeadlineExceeded))
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed in chain: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cause in chain: %v", err)
	}
	var ce *CompletionError
	if !errors.As(err, &ce) || ce.Op != "converse" {
		t.Fatalf("errors.As: %v", err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	err := UnsupportedFormat("xyz")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat: %v", err)
	}
}
