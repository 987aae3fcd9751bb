package risk

import (
	"fmt"

	"cognitia-edu/minerva/pkg/trace"
)

// GovernanceRules audits exchanges against the active policy after the fact:
// responses whose involvement exceeds the policy ceiling, and learners whose
// rolling aggregates show sustained over-reliance or persistent blocking.
type GovernanceRules struct{}

// Dimension tags the rule family.
func (*GovernanceRules) Dimension() trace.Dimension { return trace.DimensionGovernance }

// Evaluate runs every governance rule and returns all findings.
func (*GovernanceRules) Evaluate(in *Input) []*Finding {
	var findings []*Finding

	if in.OutputTrace != nil && in.Policy != nil &&
		in.OutputTrace.AIInvolvement > in.Policy.MaxAIInvolvement {
		findings = append(findings, &Finding{
			Kind:     "involvement-exceeds-policy",
			Severity: trace.SeverityHigh,
			Description: fmt.Sprintf(
				"response AI involvement %.2f exceeds the policy ceiling %.2f",
				in.OutputTrace.AIInvolvement, in.Policy.MaxAIInvolvement),
			TraceIDs: []string{in.OutputTrace.ID},
		})
	}

	if agg := in.Aggregate; agg != nil {
		limit := threshold(in.Policy, trace.DimensionGovernance, 0.6)
		if agg.Interactions >= 10 && agg.MeanInvolvement > limit {
			findings = append(findings, &Finding{
				Kind:     "sustained-overreliance",
				Severity: trace.SeverityMedium,
				Description: fmt.Sprintf(
					"mean AI involvement %.2f over %d interactions exceeds the %.2f threshold",
					agg.MeanInvolvement, agg.Interactions, limit),
			})
		}

		if agg.Interactions >= 5 && float64(agg.Blocked)/float64(agg.Interactions) > 0.5 {
			findings = append(findings, &Finding{
				Kind:     "persistent-blocking",
				Severity: trace.SeverityMedium,
				Description: fmt.Sprintf(
					"%d of the learner's %d interactions in this activity were blocked",
					agg.Blocked, agg.Interactions),
			})
		}
	}

	return findings
}
