package trace

import (
	"testing"
	"time"
)

func promptTrace(id, justification string, blocked bool) *CognitiveTrace {
	t := &CognitiveTrace{
		ID:            id,
		SessionID:     "s1",
		Kind:          KindLearnerPrompt,
		Content:       "prompt " + id,
		Justification: justification,
		Context:       map[string]string{},
		CreatedAt:     time.Now(),
	}
	if blocked {
		t.Context[ContextKeyBlocked] = "true"
	}
	return t
}

func responseTrace(id, agent string, involvement float64) *CognitiveTrace {
	return &CognitiveTrace{
		ID:            id,
		SessionID:     "s1",
		Kind:          KindSystemResponse,
		Content:       "response " + id,
		AIInvolvement: involvement,
		Context:       map[string]string{ContextKeyAgent: agent},
		CreatedAt:     time.Now(),
	}
}

func TestBuildSequenceAIDependency(t *testing.T) {
	seq := BuildSequence("s1", []*CognitiveTrace{
		promptTrace("p1", "", false),
		responseTrace("r1", "socratic", 0.2),
		promptTrace("p2", "", false),
		responseTrace("r2", "explicative", 0.6),
	})

	if got, want := seq.AIDependency, 0.4; got != want {
		t.Errorf("AIDependency = %v, want %v", got, want)
	}
	if seq.StrategyChanges != 1 {
		t.Errorf("StrategyChanges = %d, want 1", seq.StrategyChanges)
	}
}

func TestBuildSequenceEmpty(t *testing.T) {
	seq := BuildSequence("s1", nil)
	if seq.AIDependency != 0 {
		t.Errorf("AIDependency = %v, want 0", seq.AIDependency)
	}
	if seq.StrategyChanges != 0 {
		t.Errorf("StrategyChanges = %d, want 0", seq.StrategyChanges)
	}
}

func TestJustificationRatio(t *testing.T) {
	tests := []struct {
		name   string
		traces []*CognitiveTrace
		k      int
		want   float64
	}{
		{
			name:   "no prompts returns 1.0",
			traces: []*CognitiveTrace{responseTrace("r1", "socratic", 0.2)},
			k:      5,
			want:   1.0,
		},
		{
			name: "half justified",
			traces: []*CognitiveTrace{
				promptTrace("p1", "because X", false),
				promptTrace("p2", "", false),
			},
			k:    5,
			want: 0.5,
		},
		{
			name: "window excludes older prompts",
			traces: []*CognitiveTrace{
				promptTrace("p1", "old justified", false),
				promptTrace("p2", "", false),
				promptTrace("p3", "", false),
			},
			k:    2,
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := BuildSequence("s1", tt.traces)
			if got := seq.JustificationRatio(tt.k); got != tt.want {
				t.Errorf("JustificationRatio(%d) = %v, want %v", tt.k, got, tt.want)
			}
		})
	}
}

func TestBlockedStreak(t *testing.T) {
	seq := BuildSequence("s1", []*CognitiveTrace{
		promptTrace("p1", "", false),
		promptTrace("p2", "", true),
		promptTrace("p3", "", true),
	})
	if got := seq.BlockedStreak(); got != 2 {
		t.Errorf("BlockedStreak = %d, want 2", got)
	}

	// A non-blocked prompt at the end resets the streak.
	seq = BuildSequence("s1", []*CognitiveTrace{
		promptTrace("p1", "", true),
		promptTrace("p2", "", false),
	})
	if got := seq.BlockedStreak(); got != 0 {
		t.Errorf("BlockedStreak = %d, want 0", got)
	}
}

func TestRiskValidate(t *testing.T) {
	valid := &Risk{
		ID:       "r1",
		Severity: SeverityHigh,
		TraceIDs: []string{"t1"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name string
		risk *Risk
	}{
		{"missing id", &Risk{Severity: SeverityLow, TraceIDs: []string{"t1"}}},
		{"no trace ids", &Risk{ID: "r1", Severity: SeverityLow}},
		{"unknown severity", &Risk{ID: "r1", Severity: "catastrophic", TraceIDs: []string{"t1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.risk.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
