package trace

// Sequence is an ordered, derived view over all traces of a session. It is
// rebuilt on demand from the trace store and never mutated independently.
type Sequence struct {
	// SessionID is the session the sequence was built for.
	SessionID string

	// Traces holds the session's traces, oldest first.
	Traces []*CognitiveTrace

	// AIDependency is the cumulative AI-dependency score for the session:
	// the mean AI involvement across system responses, in [0,1].
	AIDependency float64

	// StrategyChanges counts how many times consecutive system responses
	// were produced by different agents.
	StrategyChanges int
}

// ContextKeyAgent is the trace context key carrying the response agent tag.
const ContextKeyAgent = "agent"

// ContextKeyBlocked is the trace context key flagging a governance block.
const ContextKeyBlocked = "blocked"

// BuildSequence derives a Sequence from the given session traces. The input
// slice must already be ordered oldest first, as returned by
// Storage.RecentTraces.
func BuildSequence(sessionID string, traces []*CognitiveTrace) *Sequence {
	seq := &Sequence{
		SessionID: sessionID,
		Traces:    traces,
	}

	var (
		involvementSum float64
		responses      int
		lastAgent      string
	)

	for _, t := range traces {
		if t.Kind != KindSystemResponse {
			continue
		}
		responses++
		involvementSum += t.AIInvolvement

		agent := t.Context[ContextKeyAgent]
		if agent != "" && lastAgent != "" && agent != lastAgent {
			seq.StrategyChanges++
		}
		if agent != "" {
			lastAgent = agent
		}
	}

	if responses > 0 {
		seq.AIDependency = involvementSum / float64(responses)
	}

	return seq
}

// JustificationRatio returns the fraction of learner prompts in the sequence
// that carried a justification, considering at most the last k prompts.
// Returns 1.0 when the sequence holds no learner prompts, so a fresh session
// is never penalized.
func (s *Sequence) JustificationRatio(k int) float64 {
	prompts := make([]*CognitiveTrace, 0, k)
	for i := len(s.Traces) - 1; i >= 0 && len(prompts) < k; i-- {
		if s.Traces[i].Kind == KindLearnerPrompt {
			prompts = append(prompts, s.Traces[i])
		}
	}

	if len(prompts) == 0 {
		return 1.0
	}

	justified := 0
	for _, p := range prompts {
		if p.Justification != "" {
			justified++
		}
	}
	return float64(justified) / float64(len(prompts))
}

// BlockedStreak returns the number of consecutive most-recent learner prompts
// that were blocked by governance.
func (s *Sequence) BlockedStreak() int {
	streak := 0
	for i := len(s.Traces) - 1; i >= 0; i-- {
		t := s.Traces[i]
		if t.Kind != KindLearnerPrompt {
			continue
		}
		if t.Context[ContextKeyBlocked] != "true" {
			break
		}
		streak++
	}
	return streak
}
