// Package cache implements the shared response cache that avoids duplicate
// upstream generation calls for identical requests.
//
// Keys are derived from a sha256 hash over the normalized prompt, the sorted
// context map, the session-scoped isolation token, a secret salt, and the
// interaction mode. Salt and session token are hard requirements of the key
// derivation; the constructors reject their absence.
package cache
