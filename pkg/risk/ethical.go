package risk

import (
	"strings"

	"cognitia-edu/minerva/pkg/trace"
)

// ghostwritingMarkers are phrasings that ask the system to disguise generated
// work as the learner's own. Matched case-insensitively.
var ghostwritingMarkers = []string{
	"as if i wrote it",
	"so it doesn't look like ai",
	"make it look like i did it",
	"don't make it obvious",
	"so my teacher won't notice",
	"comme si je l'avais écrit",
	"como si lo hubiera escrito yo",
}

// EthicalRules flags attempts to misrepresent authorship: ghostwriting
// requests and heavily generated content submitted without any stated
// learner contribution.
type EthicalRules struct{}

// Dimension tags the rule family.
func (*EthicalRules) Dimension() trace.Dimension { return trace.DimensionEthical }

// Evaluate runs every ethical rule and returns all findings.
func (*EthicalRules) Evaluate(in *Input) []*Finding {
	var findings []*Finding

	prompt := strings.ToLower(in.InputTrace.Content)
	for _, marker := range ghostwritingMarkers {
		if strings.Contains(prompt, marker) {
			findings = append(findings, &Finding{
				Kind:        "ghostwriting-request",
				Severity:    trace.SeverityHigh,
				Description: "learner asked for generated work disguised as their own",
				Evidence:    []string{excerpt(in.InputTrace.Content, 200)},
				Recommendations: []string{
					"discuss authorship expectations with the learner",
				},
			})
			break
		}
	}

	if in.OutputTrace != nil && in.OutputTrace.AIInvolvement > 0.8 &&
		in.InputTrace.Justification == "" {
		ids := []string{in.InputTrace.ID, in.OutputTrace.ID}
		findings = append(findings, &Finding{
			Kind:        "undisclosed-assistance",
			Severity:    trace.SeverityMedium,
			Description: "highly generated response delivered without any learner-stated contribution",
			TraceIDs:    ids,
		})
	}

	return findings
}
