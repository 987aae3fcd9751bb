package governance

import (
	"time"

	"cognitia-edu/minerva/pkg/trace"
)

// Policy is a read-only governance snapshot for one activity, already merged
// with any institution-wide floor. It is owned and mutated by an external
// administration collaborator; this core only evaluates it.
type Policy struct {
	// ActivityID scopes the policy. Empty means a default policy.
	ActivityID string `yaml:"id"`

	// InstitutionID identifies the owning institution, when known.
	InstitutionID string `yaml:"institution_id"`

	// MaxDelegation is the delegation-score threshold at or above which a
	// request is blocked. A missing threshold blocks everything (the most
	// restrictive reading), so policy files should always set it.
	MaxDelegation float64 `yaml:"max_delegation"`

	// MaxAIInvolvement is the maximum permitted AI involvement for
	// responses in this activity, consumed by the risk analyzer.
	MaxAIInvolvement float64 `yaml:"max_ai_involvement"`

	// MaxHelpLevel bounds the suggested AI involvement for
	// implementation-help requests when BlockCompleteSolutions is set.
	MaxHelpLevel float64 `yaml:"max_help_level"`

	// BlockCompleteSolutions blocks implementation-help requests whose
	// suggested involvement exceeds MaxHelpLevel.
	BlockCompleteSolutions bool `yaml:"block_complete_solutions"`

	// RequireJustification flags activities where learners must supply
	// reasoning; consumed by the cognitive risk rule-set.
	RequireJustification bool `yaml:"require_justification"`

	// RiskThresholds holds per-dimension scores above which the risk
	// analyzer escalates severity.
	RiskThresholds map[trace.Dimension]float64 `yaml:"risk_thresholds"`
}

// Reason enumerates why the policy gate blocked a request.
type Reason string

const (
	// ReasonDelegationBlocked: the delegation score met or exceeded the
	// policy's delegation threshold.
	ReasonDelegationBlocked Reason = "DELEGATION_BLOCKED"

	// ReasonHelpLevelExceeded: an implementation-help request asked for
	// more AI involvement than the policy permits.
	ReasonHelpLevelExceeded Reason = "HELP_LEVEL_EXCEEDED"
)

// Decision is the policy gate's verdict. The engine is side-effect free:
// recording blocking events is the orchestrator's responsibility.
type Decision struct {
	// Blocked reports whether the request must not reach generation.
	Blocked bool

	// Reason is set when Blocked is true.
	Reason Reason

	// PedagogicalMessage is the learner-facing redirection text for a
	// blocked request.
	PedagogicalMessage string

	// EvaluationTime is how long rule evaluation took.
	EvaluationTime time.Duration
}

// LearnerHistory is the optional per-learner aggregate input to evaluation.
type LearnerHistory struct {
	// RecentBlocked counts the learner's recently blocked interactions.
	RecentBlocked int

	// BlockedStreak counts consecutive blocked interactions.
	BlockedStreak int
}

// Source provides read-only policy snapshots per request.
type Source interface {
	// ActivePolicy returns the merged policy for the activity under the
	// institution's floor. Implementations return a defensive copy.
	ActivePolicy(activityID, institutionID string) (*Policy, error)
}

// DefaultPolicy returns a sane permissive-but-bounded policy used when a
// source has no entry for an activity.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxDelegation:          0.8,
		MaxAIInvolvement:       0.7,
		MaxHelpLevel:           0.6,
		BlockCompleteSolutions: true,
		RiskThresholds: map[trace.Dimension]float64{
			trace.DimensionCognitive:  0.7,
			trace.DimensionGovernance: 0.7,
		},
	}
}
