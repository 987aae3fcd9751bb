package backend

import (
	"context"
	"errors"
	"fmt"
)

// GenerationError wraps a language-backend failure. It is surfaced to the
// gateway caller as retryable; the core performs no automatic retries.
type GenerationError struct {
	Backend string
	Cause   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("backend %s generation failed: %v", e.Backend, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// Timeout reports whether the wrapped failure was a deadline expiry.
func (e *GenerationError) Timeout() bool {
	return errors.Is(e.Cause, context.DeadlineExceeded)
}

// NewGenerationError creates a GenerationError for the named backend.
func NewGenerationError(backend string, cause error) *GenerationError {
	return &GenerationError{Backend: backend, Cause: cause}
}
