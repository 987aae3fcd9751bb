package risk

import (
	"fmt"

	"cognitia-edu/minerva/pkg/trace"
)

// justificationWindow is how many recent learner prompts the justification
// ratio considers.
const justificationWindow = 5

// CognitiveRules flags patterns of cognitive disengagement: total delegation,
// persistent blocked attempts, missing justifications, and growing dependency
// on generated content.
type CognitiveRules struct{}

// Dimension tags the rule family.
func (*CognitiveRules) Dimension() trace.Dimension { return trace.DimensionCognitive }

// Evaluate runs every cognitive rule and returns all findings.
func (*CognitiveRules) Evaluate(in *Input) []*Finding {
	var findings []*Finding

	if in.Classification != nil && in.Classification.DelegationScore >= 1.0 {
		findings = append(findings, &Finding{
			Kind:        "total-delegation",
			Severity:    trace.SeverityHigh,
			Description: "learner asked the system to produce the complete solution",
			Evidence:    []string{excerpt(in.InputTrace.Content, 200)},
			Recommendations: []string{
				"review the learner's recent autonomous work",
				"consider a session focused on problem decomposition",
			},
		})
	}

	if in.Sequence != nil {
		if streak := in.Sequence.BlockedStreak(); streak >= 3 {
			findings = append(findings, &Finding{
				Kind:        "blocked-streak",
				Severity:    trace.SeverityHigh,
				Description: fmt.Sprintf("%d consecutive prompts were blocked by governance", streak),
				Recommendations: []string{
					"the learner may be probing the policy rather than working",
				},
			})
		}

		requireJustification := in.Policy != nil && in.Policy.RequireJustification
		if requireJustification {
			if ratio := in.Sequence.JustificationRatio(justificationWindow); ratio < 0.3 {
				findings = append(findings, &Finding{
					Kind:     "justification-deficit",
					Severity: trace.SeverityMedium,
					Description: fmt.Sprintf(
						"only %.0f%% of the last %d prompts carried a justification in an activity that requires one",
						ratio*100, justificationWindow),
				})
			}
		}

		limit := threshold(in.Policy, trace.DimensionCognitive, 0.7)
		if in.Sequence.AIDependency > limit {
			findings = append(findings, &Finding{
				Kind:     "ai-dependency",
				Severity: trace.SeverityMedium,
				Description: fmt.Sprintf(
					"session AI-dependency score %.2f exceeds the %.2f threshold",
					in.Sequence.AIDependency, limit),
			})
		}
	}

	return findings
}
