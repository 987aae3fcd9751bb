package trace

import (
	"context"
	"time"
)

// Depth represents how much cognitive detail a trace captures, from final
// artifacts only up to full reasoning and justification capture.
type Depth string

const (
	// DepthSurface captures only the exchanged text.
	DepthSurface Depth = "surface"
	// DepthTechnical adds technical artifacts (code, formulas) to the capture.
	DepthTechnical Depth = "technical"
	// DepthInteractional adds the interaction metadata (agent, scores).
	DepthInteractional Depth = "interactional"
	// DepthFullCognitive captures reasoning, intent, and justification.
	DepthFullCognitive Depth = "full-cognitive"
)

// Kind distinguishes the two directions of an exchange.
type Kind string

const (
	// KindLearnerPrompt is an inbound message written by the learner.
	KindLearnerPrompt Kind = "learner-prompt"
	// KindSystemResponse is an outbound message produced by the gateway.
	KindSystemResponse Kind = "system-response"
)

// CognitiveState is the phase of problem-solving a learner is currently in.
type CognitiveState string

const (
	StateExploration    CognitiveState = "exploration"
	StatePlanning       CognitiveState = "planning"
	StateImplementation CognitiveState = "implementation"
	StateValidation     CognitiveState = "validation"
	StateReflection     CognitiveState = "reflection"
)

// CognitiveTrace is the immutable record of one half of an exchange between a
// learner and the gateway. Once persisted, no field may change; corrections are
// modeled as new traces referencing the original through Context["corrects"].
type CognitiveTrace struct {
	// Identity
	ID         string `json:"id"`          // UUID v4
	SessionID  string `json:"session_id"`  // Tutoring session
	LearnerID  string `json:"learner_id"`  // Learner identifier
	ActivityID string `json:"activity_id"` // Pedagogical activity

	// Capture
	Depth   Depth  `json:"depth"`   // Capture depth tag
	Kind    Kind   `json:"kind"`    // learner-prompt | system-response
	Content string `json:"content"` // Free-text content

	// Cognitive annotations
	CognitiveState CognitiveState `json:"cognitive_state"`         // Detected phase
	Intent         string         `json:"intent,omitempty"`        // Optional cognitive intent
	Justification  string         `json:"justification,omitempty"` // Learner-supplied reasoning

	// AIInvolvement estimates how much of the content originated from the
	// generative backend versus the learner, normalized to [0,1].
	AIInvolvement float64 `json:"ai_involvement"`

	// Context carries arbitrary key-value annotations (agent tag, blocked
	// flag, mode, correction references).
	Context map[string]string `json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Severity is the ordered severity level of a risk finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Dimension tags the rule-set family that produced a risk finding.
type Dimension string

const (
	DimensionCognitive  Dimension = "cognitive"
	DimensionEthical    Dimension = "ethical"
	DimensionEpistemic  Dimension = "epistemic"
	DimensionTechnical  Dimension = "technical"
	DimensionGovernance Dimension = "governance"
)

// Risk is a finding emitted by the risk analyzer. Risks are created only by
// the analyzer, mutated only to toggle Resolved by a human reviewer, and never
// deleted while unresolved. A Risk always references at least one trace.
type Risk struct {
	// Identity
	ID         string `json:"id"` // UUID v4
	SessionID  string `json:"session_id"`
	LearnerID  string `json:"learner_id"`
	ActivityID string `json:"activity_id"`

	// Classification
	Kind      string    `json:"kind"`      // Rule identifier (e.g., "delegation-streak")
	Severity  Severity  `json:"severity"`  // low | medium | high | critical
	Dimension Dimension `json:"dimension"` // Rule-set family

	// Finding
	Description     string   `json:"description"`
	Evidence        []string `json:"evidence,omitempty"`        // Verbatim excerpts
	Recommendations []string `json:"recommendations,omitempty"` // Reviewer guidance
	TraceIDs        []string `json:"trace_ids"`                 // Triggering traces (min 1)

	DetectedAt time.Time `json:"detected_at"`
	Resolved   bool      `json:"resolved"`
}

// Validate checks the risk invariants that storage backends enforce.
func (r *Risk) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "risk id is required"}
	}
	if len(r.TraceIDs) == 0 {
		return &ValidationError{Field: "trace_ids", Reason: "a risk must reference at least one trace"}
	}
	switch r.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		return &ValidationError{Field: "severity", Reason: "unknown severity " + string(r.Severity)}
	}
	return nil
}

// Storage is the narrow persistence contract consumed by the recorder, the
// risk analyzer, and the retention pruner. Implementations must be safe for
// concurrent use.
type Storage interface {
	// SaveTrace persists an immutable trace record.
	SaveTrace(ctx context.Context, t *CognitiveTrace) error

	// SaveRisk persists a risk finding. Implementations reject risks that
	// fail Validate.
	SaveRisk(ctx context.Context, r *Risk) error

	// RecentTraces returns up to limit traces for a session, oldest first.
	RecentTraces(ctx context.Context, sessionID string, limit int) ([]*CognitiveTrace, error)

	// ListRisks returns all risk findings recorded for a session.
	ListRisks(ctx context.Context, sessionID string) ([]*Risk, error)

	// SetRiskResolved toggles the resolution flag on a finding. This is the
	// only mutation the model permits and it is driven by a human reviewer.
	SetRiskResolved(ctx context.Context, riskID string, resolved bool) error

	// DeleteTracesBefore removes traces created before the cutoff.
	// Used by retention enforcement; returns the number removed.
	DeleteTracesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteResolvedRisksBefore removes resolved findings detected before
	// the cutoff. Unresolved findings are never pruned.
	DeleteResolvedRisksBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}
