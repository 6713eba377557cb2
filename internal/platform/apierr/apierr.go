package apierr

import (
	"errors"
	"fmt"
	"net/http"

	perrors "github.com/yungbote/pathforge-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From classifies a core error for the routing layer.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, perrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, perrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, perrors.ErrUnsupportedFormat):
		return New(http.StatusBadRequest, "unsupported_format", err)
	case errors.Is(err, perrors.ErrInvalidTransition):
		return New(http.StatusConflict, "invalid_transition", err)
	case errors.Is(err, perrors.ErrEmbeddingUnavailable):
		return New(http.StatusBadGateway, "embedding_unavailable", err)
	case errors.Is(err, perrors.ErrCompletionFailed):
		return New(http.StatusBadGateway, "completion_failed", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
