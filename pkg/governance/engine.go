package governance

import (
	"log/slog"
	"math"
	"time"

	"cognitia-edu/minerva/pkg/classifier"
)

// Engine evaluates classifier output against a governance policy. Evaluation
// is synchronous, bounded, and side-effect free, which keeps the gate
// independently testable.
type Engine struct {
	logger   *slog.Logger
	messages Messages
}

// Messages holds the learner-facing texts for each block reason.
type Messages struct {
	DelegationBlocked string
	HelpLevelExceeded string
}

// DefaultMessages returns the stock pedagogical redirection texts.
func DefaultMessages() Messages {
	return Messages{
		DelegationBlocked: "I can't produce the complete solution for you, but I can help you build it. " +
			"Tell me what you've tried so far, or which part is blocking you, and we'll work through it together.",
		HelpLevelExceeded: "This activity limits how much of the work I can do directly. " +
			"Let's take a smaller step: describe your current approach and I'll point you in the right direction.",
	}
}

// NewEngine creates a policy engine. Zero-value Messages fields fall back to
// the defaults.
func NewEngine(messages Messages, logger *slog.Logger) *Engine {
	defaults := DefaultMessages()
	if messages.DelegationBlocked == "" {
		messages.DelegationBlocked = defaults.DelegationBlocked
	}
	if messages.HelpLevelExceeded == "" {
		messages.HelpLevelExceeded = defaults.HelpLevelExceeded
	}
	if logger == nil {
		logger = slog.Default().With("component", "governance.engine")
	}
	return &Engine{logger: logger, messages: messages}
}

// Streak tightening: a learner whose last streakTightenAfter interactions
// were all blocked gets their delegation ceiling halved, since a streak
// usually means the same request is being rephrased at the gate.
const (
	streakTightenAfter  = 3
	streakTightenFactor = 0.5
)

// Evaluate applies the ordered rules, first match wins:
//
//	(a) delegationScore >= policy.MaxDelegation      -> DELEGATION_BLOCKED
//	(b) implementation-help AND BlockCompleteSolutions
//	    AND suggested involvement > policy.MaxHelpLevel -> HELP_LEVEL_EXCEEDED
//	(c) otherwise allowed.
//
// history may be nil; a blocked streak in it tightens rule (a)'s ceiling.
// Invalid thresholds are clamped to their most restrictive value rather than
// failing evaluation.
func (e *Engine) Evaluate(cls *classifier.Classification, policy *Policy, history *LearnerHistory) *Decision {
	start := time.Now()

	if policy == nil {
		// No policy at all: fail restrictive, matching the missing-
		// threshold rule below.
		e.logger.Warn("evaluating without a policy, blocking by default")
		return &Decision{
			Blocked:            true,
			Reason:             ReasonDelegationBlocked,
			PedagogicalMessage: e.messages.DelegationBlocked,
			EvaluationTime:     time.Since(start),
		}
	}

	maxDelegation := restrictiveThreshold(policy.MaxDelegation, e.logger, "max_delegation")
	maxHelpLevel := restrictiveThreshold(policy.MaxHelpLevel, e.logger, "max_help_level")

	if history != nil && history.BlockedStreak >= streakTightenAfter {
		maxDelegation *= streakTightenFactor
		e.logger.Info("delegation ceiling tightened",
			"blocked_streak", history.BlockedStreak,
			"max_delegation", maxDelegation,
		)
	}

	// Rule (a): delegation threshold.
	if cls.DelegationScore >= maxDelegation {
		e.logger.Info("request blocked",
			"reason", ReasonDelegationBlocked,
			"delegation_score", cls.DelegationScore,
			"max_delegation", maxDelegation,
		)
		return &Decision{
			Blocked:            true,
			Reason:             ReasonDelegationBlocked,
			PedagogicalMessage: e.messages.DelegationBlocked,
			EvaluationTime:     time.Since(start),
		}
	}

	// Rule (b): help-level ceiling for implementation help.
	if cls.RequestType == classifier.RequestImplementationHelp &&
		policy.BlockCompleteSolutions &&
		cls.SuggestedAIInvolvement > maxHelpLevel {
		e.logger.Info("request blocked",
			"reason", ReasonHelpLevelExceeded,
			"suggested_involvement", cls.SuggestedAIInvolvement,
			"max_help_level", maxHelpLevel,
		)
		return &Decision{
			Blocked:            true,
			Reason:             ReasonHelpLevelExceeded,
			PedagogicalMessage: e.messages.HelpLevelExceeded,
			EvaluationTime:     time.Since(start),
		}
	}

	return &Decision{
		Blocked:        false,
		EvaluationTime: time.Since(start),
	}
}

// restrictiveThreshold validates a [0,1] threshold. Missing (zero), negative,
// NaN, or >1 values collapse to 0, which blocks everything gated on that
// threshold: an ambiguous policy must fail restrictive, not crash or allow.
func restrictiveThreshold(v float64, logger *slog.Logger, name string) float64 {
	if math.IsNaN(v) || v < 0 || v > 1 {
		logger.Warn("invalid policy threshold, applying most restrictive default",
			"threshold", name,
			"value", v,
		)
		return 0
	}
	return v
}
