package risk

import (
	"fmt"
	"strings"

	"cognitia-edu/minerva/pkg/trace"
)

// completeCodeLines is the fenced-block line count at which a response is
// treated as a complete solution rather than an illustrative fragment.
const completeCodeLines = 15

// TechnicalRules inspects generated responses for over-complete technical
// artifacts: solution-sized code blocks the strategies are instructed never
// to produce.
type TechnicalRules struct{}

// Dimension tags the rule family.
func (*TechnicalRules) Dimension() trace.Dimension { return trace.DimensionTechnical }

// Evaluate runs every technical rule and returns all findings.
func (*TechnicalRules) Evaluate(in *Input) []*Finding {
	if in.OutputTrace == nil {
		return nil
	}

	var findings []*Finding

	if lines := longestCodeBlock(in.OutputTrace.Content); lines >= completeCodeLines {
		findings = append(findings, &Finding{
			Kind:     "complete-code-response",
			Severity: trace.SeverityHigh,
			Description: fmt.Sprintf(
				"response contains a %d-line code block, large enough to be a complete solution", lines),
			Evidence: []string{excerpt(in.OutputTrace.Content, 300)},
			TraceIDs: []string{in.OutputTrace.ID},
			Recommendations: []string{
				"review the strategy instructions for this activity",
			},
		})
	}

	return findings
}

// longestCodeBlock returns the line count of the longest fenced code block in
// content, or 0 when none is present.
func longestCodeBlock(content string) int {
	longest := 0
	current := 0
	inBlock := false

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock && current > longest {
				longest = current
			}
			inBlock = !inBlock
			current = 0
			continue
		}
		if inBlock {
			current++
		}
	}
	return longest
}
