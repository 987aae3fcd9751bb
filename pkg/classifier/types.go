package classifier

import (
	"time"

	"cognitia-edu/minerva/pkg/trace"
)

// RequestType categorizes what the learner is asking for.
type RequestType string

const (
	RequestConceptualQuery    RequestType = "conceptual-query"
	RequestImplementationHelp RequestType = "implementation-help"
	RequestDelegation         RequestType = "delegation"
	RequestValidation         RequestType = "validation"
	RequestJustification      RequestType = "justification"
	RequestOther              RequestType = "other"
)

// Source records which classification layer produced the result.
type Source string

const (
	// SourcePattern means a canonical delegation phrasing matched.
	SourcePattern Source = "pattern"
	// SourceBackend means the language backend classified the prompt.
	SourceBackend Source = "backend"
	// SourceFallback means the conservative heuristic was used after a
	// backend failure or timeout.
	SourceFallback Source = "fallback"
)

// Classification is the output of the cognitive classifier.
type Classification struct {
	// RequestType is the detected request category.
	RequestType RequestType `json:"request_type"`

	// CognitiveState is the detected problem-solving phase.
	CognitiveState trace.CognitiveState `json:"cognitive_state"`

	// DelegationScore estimates how much the prompt asks the system to do
	// the work, in [0,1]. 1.0 means total delegation.
	DelegationScore float64 `json:"delegation_score"`

	// SuggestedAIInvolvement is the classifier's estimate of how much AI
	// help is appropriate, in [0,1].
	SuggestedAIInvolvement float64 `json:"suggested_ai_involvement"`

	// Source records the layer that produced this classification.
	Source Source `json:"source"`

	// Justification is the backend's stated reason, when available.
	Justification string `json:"justification,omitempty"`
}

// Config configures the classifier.
type Config struct {
	// DelegationPatterns lists canonical total-delegation phrasings,
	// matched case- and diacritic-insensitively against the prompt.
	DelegationPatterns []string

	// HistoryLimit bounds how many recent traces are passed to the
	// backend as context.
	// Default: 6
	HistoryLimit int

	// Timeout bounds the backend classification call. Expiry triggers the
	// fallback path, never an error to the caller.
	// Default: 3 seconds
	Timeout time.Duration
}

// DefaultConfig returns the default classifier configuration, including the
// stock delegation pattern list.
func DefaultConfig() *Config {
	return &Config{
		DelegationPatterns: DefaultDelegationPatterns(),
		HistoryLimit:       6,
		Timeout:            3 * time.Second,
	}
}
