// Package source provides governance policy sources: a YAML file source with
// fsnotify-based hot reload and institution-floor merging, and an in-memory
// source for tests.
package source
