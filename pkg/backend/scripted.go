package backend

import (
	"context"
	"sync"
)

// ScriptedBackend is a deterministic LanguageBackend for tests and dry runs.
// It returns queued responses in order, then falls back to a fixed default,
// and counts how many completion calls it received.
type ScriptedBackend struct {
	mu        sync.Mutex
	responses []string
	// Default is returned once queued responses are exhausted.
	Default string
	// Err, when set, is returned by every call instead of a response.
	Err   error
	calls int
	// LastTurns records the turns of the most recent call.
	LastTurns []Turn
}

// NewScriptedBackend creates a scripted backend with the given queued
// responses.
func NewScriptedBackend(responses ...string) *ScriptedBackend {
	return &ScriptedBackend{
		responses: responses,
		Default:   "scripted response",
	}
}

// Name returns the backend name for logging and metrics.
func (b *ScriptedBackend) Name() string { return "scripted" }

// Complete returns the next queued response. It honors ctx cancellation so
// timeout paths can be exercised in tests.
func (b *ScriptedBackend) Complete(ctx context.Context, turns []Turn, params SamplingParams) (string, error) {
	select {
	case <-ctx.Done():
		return "", NewGenerationError(b.Name(), ctx.Err())
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls++
	b.LastTurns = append([]Turn(nil), turns...)

	if b.Err != nil {
		return "", NewGenerationError(b.Name(), b.Err)
	}
	if len(b.responses) > 0 {
		next := b.responses[0]
		b.responses = b.responses[1:]
		return next, nil
	}
	return b.Default, nil
}

// Calls returns the number of completion calls received.
func (b *ScriptedBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}
