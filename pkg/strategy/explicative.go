package strategy

import (
	"context"

	"cognitia-edu/minerva/pkg/backend"
)

// ExplicativeStrategy explains concepts directly. Selected when the learner
// shows a conceptual gap (planning or validation phases).
type ExplicativeStrategy struct {
	backend backend.LanguageBackend
}

// NewExplicativeStrategy creates the explicative tutoring strategy.
func NewExplicativeStrategy(lb backend.LanguageBackend) *ExplicativeStrategy {
	return &ExplicativeStrategy{backend: lb}
}

// Kind returns the strategy's identity tag.
func (s *ExplicativeStrategy) Kind() Kind { return KindExplicative }

// Respond gives a clear conceptual explanation with an illustrative example,
// stopping short of solving the learner's actual task.
func (s *ExplicativeStrategy) Respond(ctx context.Context, req *Request) (*Response, error) {
	instruction := joinLines(
		"You are a tutor explaining a concept. Give a clear, structured explanation with one illustrative example.",
		"Illustrate with generic examples only; do not solve the learner's specific task.",
		"End with one question that checks understanding.",
		describeState(req),
	)

	text, err := s.backend.Complete(ctx, buildTurns(instruction, req), backend.SamplingParams{
		Temperature: 0.5,
		MaxTokens:   600,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:          text,
		AgentUsed:     string(KindExplicative),
		AIInvolvement: 0.4,
	}, nil
}
