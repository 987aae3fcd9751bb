package backend

import "context"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in the conversation sent to the language backend.
type Turn struct {
	Role    Role
	Content string
}

// SamplingParams controls generation behavior for a single completion call.
// Zero values mean "use the backend's default".
type SamplingParams struct {
	// Temperature controls randomness. Typical range [0,2].
	Temperature float32

	// MaxTokens caps the completion length. 0 means no explicit cap.
	MaxTokens int

	// TopP is the nucleus sampling parameter.
	TopP float32

	// Stop lists sequences that terminate generation.
	Stop []string
}

// LanguageBackend is the opaque "complete a conversation" capability this core
// consumes. Timeouts and cancellation travel through ctx; retry policy belongs
// to the implementation, never to callers.
type LanguageBackend interface {
	// Complete sends the conversation turns and returns the generated text.
	Complete(ctx context.Context, turns []Turn, params SamplingParams) (string, error)

	// Name returns the backend name for logging and metrics.
	Name() string
}
