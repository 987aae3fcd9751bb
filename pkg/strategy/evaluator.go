package strategy

import (
	"context"

	"cognitia-edu/minerva/pkg/backend"
)

// ProcessEvaluatorStrategy assesses how the learner worked, not whether the
// artifact is correct.
type ProcessEvaluatorStrategy struct {
	backend backend.LanguageBackend
}

// NewProcessEvaluatorStrategy creates the process-evaluation strategy.
func NewProcessEvaluatorStrategy(lb backend.LanguageBackend) *ProcessEvaluatorStrategy {
	return &ProcessEvaluatorStrategy{backend: lb}
}

// Kind returns the strategy's identity tag.
func (s *ProcessEvaluatorStrategy) Kind() Kind { return KindProcessEvaluator }

// Respond evaluates the visible working process against the session history.
func (s *ProcessEvaluatorStrategy) Respond(ctx context.Context, req *Request) (*Response, error) {
	instruction := joinLines(
		"You evaluate a learner's working PROCESS based on the conversation so far:",
		"decomposition of the problem, justification of choices, verification habits, and autonomy.",
		"Give concise, structured feedback with one strength and one concrete improvement.",
		"Do not grade the final artifact's correctness.",
		describeState(req),
	)

	text, err := s.backend.Complete(ctx, buildTurns(instruction, req), backend.SamplingParams{
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:          text,
		AgentUsed:     string(KindProcessEvaluator),
		AIInvolvement: 0.35,
	}, nil
}
