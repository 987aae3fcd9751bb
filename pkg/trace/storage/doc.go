// Package storage provides the persistence backends for cognitive traces and
// risk findings: an in-memory implementation for tests and development, and a
// SQLite implementation with WAL mode for single-instance deployments.
//
// Both implement trace.Storage and are safe for concurrent use. Neither
// exposes any way to update a stored trace; the model is append-only.
package storage
