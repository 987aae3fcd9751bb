package strategy

import (
	"context"

	"cognitia-edu/minerva/pkg/backend"
)

// MetacognitiveStrategy prompts the learner to reflect on their own process.
// Selected for learners in the reflection phase.
type MetacognitiveStrategy struct {
	backend backend.LanguageBackend
}

// NewMetacognitiveStrategy creates the metacognitive tutoring strategy.
func NewMetacognitiveStrategy(lb backend.LanguageBackend) *MetacognitiveStrategy {
	return &MetacognitiveStrategy{backend: lb}
}

// Kind returns the strategy's identity tag.
func (s *MetacognitiveStrategy) Kind() Kind { return KindMetacognitive }

// Respond mirrors the learner's reasoning back and asks them to evaluate it.
func (s *MetacognitiveStrategy) Respond(ctx context.Context, req *Request) (*Response, error) {
	instruction := joinLines(
		"You are a tutor fostering metacognition. Help the learner examine how they approached the problem:",
		"what they assumed, what they verified, what they would do differently.",
		"Ask reflective questions; do not introduce new technical content.",
		describeState(req),
	)

	text, err := s.backend.Complete(ctx, buildTurns(instruction, req), backend.SamplingParams{
		Temperature: 0.6,
		MaxTokens:   400,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:          text,
		AgentUsed:     string(KindMetacognitive),
		AIInvolvement: 0.25,
	}, nil
}
