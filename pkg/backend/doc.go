// Package backend defines the language-backend collaborator contract and its
// adapters. The core consumes the backend as an opaque "complete a
// conversation" capability; the OpenAI adapter works against any
// OpenAI-compatible endpoint, and the scripted backend serves tests.
package backend
