package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCompletion is returned when the backend produced no usable text.
	ErrEmptyCompletion = errors.New("no completion returned")
	// ErrBackendUnavailable is returned for transport, status and decoding failures.
	ErrBackendUnavailable = errors.New("completion backend unavailable")
)

// StatusError describes a non-200 response from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets callers match StatusError against ErrBackendUnavailable.
func (e *StatusError) Unwrap() error {
	return ErrBackendUnavailable
}

func unavailable(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrBackendUnavailable, err)
}
