package strategy

import (
	"fmt"
	"strings"

	"cognitia-edu/minerva/pkg/backend"
	"cognitia-edu/minerva/pkg/trace"
)

// buildTurns assembles the conversation sent to the backend: the strategy's
// system instruction, the bounded history replayed as alternating turns, and
// the current prompt.
func buildTurns(systemInstruction string, req *Request) []backend.Turn {
	turns := make([]backend.Turn, 0, len(req.History)+2)
	turns = append(turns, backend.Turn{Role: backend.RoleSystem, Content: systemInstruction})

	for _, t := range req.History {
		role := backend.RoleUser
		if t.Kind == trace.KindSystemResponse {
			role = backend.RoleAssistant
		}
		turns = append(turns, backend.Turn{Role: role, Content: t.Content})
	}

	turns = append(turns, backend.Turn{Role: backend.RoleUser, Content: req.Prompt})
	return turns
}

// describeState renders the classification for inclusion in a system
// instruction.
func describeState(req *Request) string {
	if req.Classification == nil {
		return ""
	}
	return fmt.Sprintf("The learner appears to be in the %s phase (request type: %s).",
		req.Classification.CognitiveState, req.Classification.RequestType)
}

func joinLines(lines ...string) string {
	kept := lines[:0]
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
