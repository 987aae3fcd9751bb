package strategy

import (
	"context"

	"cognitia-edu/minerva/pkg/backend"
)

// SocraticStrategy guides exploration through questions rather than answers.
// Selected for learners in the exploration phase.
type SocraticStrategy struct {
	backend backend.LanguageBackend
}

// NewSocraticStrategy creates the socratic tutoring strategy.
func NewSocraticStrategy(lb backend.LanguageBackend) *SocraticStrategy {
	return &SocraticStrategy{backend: lb}
}

// Kind returns the strategy's identity tag.
func (s *SocraticStrategy) Kind() Kind { return KindSocratic }

// Respond answers with guiding questions and partial framing, never a
// complete solution.
func (s *SocraticStrategy) Respond(ctx context.Context, req *Request) (*Response, error) {
	instruction := joinLines(
		"You are a socratic tutor. Guide the learner toward understanding with short, pointed questions.",
		"Never hand over a finished answer or finished code. Offer at most one small concrete example.",
		"Keep responses under 150 words.",
		describeState(req),
	)

	text, err := s.backend.Complete(ctx, buildTurns(instruction, req), backend.SamplingParams{
		Temperature: 0.7,
		MaxTokens:   400,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:          text,
		AgentUsed:     string(KindSocratic),
		AIInvolvement: 0.2,
	}, nil
}
