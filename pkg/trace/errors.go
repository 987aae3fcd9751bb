package trace

import "fmt"

// ValidationError indicates an entity violated a model invariant before it
// reached storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("trace validation failed on %s: %s", e.Field, e.Reason)
}

// StorageError wraps a failure inside a storage backend with enough context
// to identify the backend and operation.
type StorageError struct {
	Backend   string // "memory", "sqlite"
	Operation string // "save_trace", "recent_traces", ...
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s storage %s failed: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// NewStorageError creates a StorageError for the given backend and operation.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// NotFoundError indicates a lookup for a specific entity id found nothing.
type NotFoundError struct {
	Entity string // "trace", "risk"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}
