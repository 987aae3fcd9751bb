package risk

import (
	"fmt"

	"cognitia-edu/minerva/pkg/trace"
)

// acceptanceWindow is how many recent exchanges the unverified-acceptance
// rule inspects.
const acceptanceWindow = 4

// EpistemicRules flags uncritical consumption of generated answers: long runs
// of accepted responses with no validation or reflection activity from the
// learner.
type EpistemicRules struct{}

// Dimension tags the rule family.
func (*EpistemicRules) Dimension() trace.Dimension { return trace.DimensionEpistemic }

// Evaluate runs every epistemic rule and returns all findings.
func (*EpistemicRules) Evaluate(in *Input) []*Finding {
	if in.Sequence == nil {
		return nil
	}

	var findings []*Finding

	// Walk the most recent exchanges: count substantive generated answers
	// and look for any sign the learner questioned them.
	responses := 0
	questioned := false
	seen := 0
	for i := len(in.Sequence.Traces) - 1; i >= 0 && seen < acceptanceWindow*2; i-- {
		t := in.Sequence.Traces[i]
		seen++
		switch t.Kind {
		case trace.KindSystemResponse:
			if t.AIInvolvement >= 0.4 {
				responses++
			}
		case trace.KindLearnerPrompt:
			if t.CognitiveState == trace.StateValidation || t.CognitiveState == trace.StateReflection {
				questioned = true
			}
		}
	}

	if responses >= acceptanceWindow && !questioned {
		findings = append(findings, &Finding{
			Kind:     "unverified-acceptance",
			Severity: trace.SeverityMedium,
			Description: fmt.Sprintf(
				"%d substantive generated answers in a row with no validation or reflection from the learner",
				responses),
			Recommendations: []string{
				"prompt the learner to test or critique the received answers",
			},
		})
	}

	return findings
}
