package risk

import (
	"cognitia-edu/minerva/pkg/aggregate"
	"cognitia-edu/minerva/pkg/classifier"
	"cognitia-edu/minerva/pkg/governance"
	"cognitia-edu/minerva/pkg/trace"
)

// Input is the evidence bundle a completed exchange hands to the analyzer.
// All fields except InputTrace are optional; rules skip checks whose evidence
// is absent.
type Input struct {
	// InputTrace is the learner-prompt trace. Required.
	InputTrace *trace.CognitiveTrace

	// OutputTrace is the system-response trace. Nil when governance blocked
	// the exchange.
	OutputTrace *trace.CognitiveTrace

	// Classification is the classifier's output for the prompt.
	Classification *classifier.Classification

	// Sequence is the derived session view, current as of this exchange.
	Sequence *trace.Sequence

	// Aggregate is the learner's rolling usage aggregate.
	Aggregate *aggregate.Snapshot

	// Policy is the governance policy the exchange was evaluated under.
	Policy *governance.Policy
}

// Finding is a rule's raw output. The analyzer stamps identity, dimension,
// and detection time when converting findings to trace.Risk records.
type Finding struct {
	// Kind identifies the rule that fired (e.g., "blocked-streak").
	Kind string

	// Severity grades the finding.
	Severity trace.Severity

	// Description explains the finding to a reviewer.
	Description string

	// Evidence holds verbatim excerpts supporting the finding.
	Evidence []string

	// Recommendations suggests reviewer follow-ups.
	Recommendations []string

	// TraceIDs references the triggering traces. When empty, the analyzer
	// attaches the input trace.
	TraceIDs []string
}

// RuleSet is one dimension's family of risk rules. Implementations must be
// stateless and safe for concurrent use; all per-exchange state arrives in
// the Input.
type RuleSet interface {
	// Dimension tags the rule family.
	Dimension() trace.Dimension

	// Evaluate runs every rule in the family and returns all findings.
	// Rules are independent; one firing never suppresses another.
	Evaluate(in *Input) []*Finding
}

// threshold reads the policy override for a dimension, falling back to def
// when the policy carries none. Values outside [0,1] fall back too.
func threshold(p *governance.Policy, dim trace.Dimension, def float64) float64 {
	if p == nil || p.RiskThresholds == nil {
		return def
	}
	v, ok := p.RiskThresholds[dim]
	if !ok || v < 0 || v > 1 {
		return def
	}
	return v
}

// excerpt truncates s for inclusion as evidence.
func excerpt(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "…"
}
