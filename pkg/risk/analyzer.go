package risk

import (
	"time"

	"github.com/google/uuid"

	"cognitia-edu/minerva/pkg/trace"
)

// Analyzer runs every registered rule set over an exchange and unions their
// findings. Dimensions are independent: a failure to find risk in one never
// masks findings from another.
type Analyzer struct {
	rules []RuleSet
}

// NewAnalyzer creates an analyzer over the given rule sets.
func NewAnalyzer(rules ...RuleSet) *Analyzer {
	return &Analyzer{rules: rules}
}

// DefaultRuleSets returns the full five-dimension rule catalogue.
func DefaultRuleSets() []RuleSet {
	return []RuleSet{
		&CognitiveRules{},
		&EthicalRules{},
		&EpistemicRules{},
		&TechnicalRules{},
		&GovernanceRules{},
	}
}

// Analyze evaluates all rule sets against in and returns the combined
// findings as persistable risk records. Returns nil when nothing fired.
func (a *Analyzer) Analyze(in *Input) []*trace.Risk {
	if in == nil || in.InputTrace == nil {
		return nil
	}

	now := time.Now().UTC()
	var risks []*trace.Risk

	for _, rs := range a.rules {
		for _, f := range rs.Evaluate(in) {
			traceIDs := f.TraceIDs
			if len(traceIDs) == 0 {
				traceIDs = []string{in.InputTrace.ID}
			}
			risks = append(risks, &trace.Risk{
				ID:              uuid.New().String(),
				SessionID:       in.InputTrace.SessionID,
				LearnerID:       in.InputTrace.LearnerID,
				ActivityID:      in.InputTrace.ActivityID,
				Kind:            f.Kind,
				Severity:        f.Severity,
				Dimension:       rs.Dimension(),
				Description:     f.Description,
				Evidence:        f.Evidence,
				Recommendations: f.Recommendations,
				TraceIDs:        traceIDs,
				DetectedAt:      now,
			})
		}
	}

	return risks
}
