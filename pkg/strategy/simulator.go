package strategy

import (
	"context"
	"fmt"

	"cognitia-edu/minerva/pkg/backend"
)

// SimulatorStrategy plays a named professional role (client, reviewer,
// interviewer) so learners can practice realistic interactions.
type SimulatorStrategy struct {
	backend backend.LanguageBackend

	// DefaultRole is used when the request names no role.
	DefaultRole string
}

// NewSimulatorStrategy creates the professional-role simulator.
func NewSimulatorStrategy(lb backend.LanguageBackend) *SimulatorStrategy {
	return &SimulatorStrategy{
		backend:     lb,
		DefaultRole: "a demanding but fair project client",
	}
}

// Kind returns the strategy's identity tag.
func (s *SimulatorStrategy) Kind() Kind { return KindSimulator }

// Respond stays in character for the named role.
func (s *SimulatorStrategy) Respond(ctx context.Context, req *Request) (*Response, error) {
	role := req.Role
	if role == "" {
		role = s.DefaultRole
	}

	instruction := joinLines(
		fmt.Sprintf("You are playing the professional role of %s in a training simulation.", role),
		"Stay in character. React the way this professional realistically would.",
		"Do not break character to tutor, and do not produce complete deliverables for the learner.",
	)

	text, err := s.backend.Complete(ctx, buildTurns(instruction, req), backend.SamplingParams{
		Temperature: 0.8,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, err
	}

	return &Response{
		Text:          text,
		AgentUsed:     string(KindSimulator) + ":" + role,
		AIInvolvement: 0.5,
	}, nil
}
