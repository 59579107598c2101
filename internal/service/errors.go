package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
	// ErrEmptyPrompt is returned when the cursor line is blank and there is
	// no selection. No backend call is made.
	ErrEmptyPrompt = errors.New("nothing to complete")
	// ErrInstructionAbandoned is returned when the instruction prompt was
	// closed without submitting. Nothing is sent or inserted.
	ErrInstructionAbandoned = errors.New("instruction abandoned")
	// ErrBusy is returned when a completion for the same document is still pending.
	ErrBusy = errors.New("completion already in progress for document")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
