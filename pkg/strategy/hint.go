package strategy

import (
	"context"
	"fmt"

	"cognitia-edu/minerva/pkg/backend"
)

// MaxHintLevel caps the graduated-hint escalation.
const MaxHintLevel = 3

// GuidedHintStrategy gives graduated hints for implementation stuck-points.
// The hint level increases monotonically with the number of prior hints in
// the session, capped at MaxHintLevel; the router computes the level.
type GuidedHintStrategy struct {
	backend backend.LanguageBackend
}

// NewGuidedHintStrategy creates the graduated-hint tutoring strategy.
func NewGuidedHintStrategy(lb backend.LanguageBackend) *GuidedHintStrategy {
	return &GuidedHintStrategy{backend: lb}
}

// Kind returns the strategy's identity tag.
func (s *GuidedHintStrategy) Kind() Kind { return KindGuidedHint }

// Respond produces a hint whose specificity matches req.HintLevel.
func (s *GuidedHintStrategy) Respond(ctx context.Context, req *Request) (*Response, error) {
	level := req.HintLevel
	if level < 1 {
		level = 1
	}
	if level > MaxHintLevel {
		level = MaxHintLevel
	}

	instruction := joinLines(
		"You are a tutor helping a learner who is stuck on an implementation.",
		hintInstruction(level),
		"Never provide the complete working solution.",
		describeState(req),
	)

	text, err := s.backend.Complete(ctx, buildTurns(instruction, req), backend.SamplingParams{
		Temperature: 0.4,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:          text,
		AgentUsed:     string(KindGuidedHint),
		AIInvolvement: 0.3 + 0.1*float64(level-1),
	}, nil
}

// hintInstruction maps the level to the permitted specificity.
func hintInstruction(level int) string {
	switch level {
	case 1:
		return "Hint level 1: point at the general approach or the concept to revisit. No code."
	case 2:
		return "Hint level 2: outline the concrete steps, naming relevant operations or functions. Pseudocode fragments are allowed."
	default:
		return fmt.Sprintf("Hint level %d: walk through the tricky part with a short partial snippet, leaving the rest for the learner.", level)
	}
}
