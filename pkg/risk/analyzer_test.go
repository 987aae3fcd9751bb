package risk

import (
	"strings"
	"testing"
	"time"

	"cognitia-edu/minerva/pkg/aggregate"
	"cognitia-edu/minerva/pkg/classifier"
	"cognitia-edu/minerva/pkg/governance"
	"cognitia-edu/minerva/pkg/trace"
)

func exchangeInput() *Input {
	return &Input{
		InputTrace: &trace.CognitiveTrace{
			ID:        "in-1",
			SessionID: "s1",
			LearnerID: "l1",
			Kind:      trace.KindLearnerPrompt,
			Content:   "help me with this function",
			CreatedAt: time.Now(),
		},
		OutputTrace: &trace.CognitiveTrace{
			ID:            "out-1",
			SessionID:     "s1",
			LearnerID:     "l1",
			Kind:          trace.KindSystemResponse,
			Content:       "What have you tried?",
			AIInvolvement: 0.2,
			CreatedAt:     time.Now(),
		},
		Classification: &classifier.Classification{
			RequestType:     classifier.RequestImplementationHelp,
			DelegationScore: 0.3,
		},
		Policy: governance.DefaultPolicy(),
	}
}

func findByKind(risks []*trace.Risk, kind string) *trace.Risk {
	for _, r := range risks {
		if r.Kind == kind {
			return r
		}
	}
	return nil
}

func TestAnalyzeCleanExchange(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)
	if risks := a.Analyze(exchangeInput()); len(risks) != 0 {
		t.Errorf("clean exchange produced %d findings: %+v", len(risks), risks)
	}
}

func TestAnalyzeNilInput(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)
	if risks := a.Analyze(nil); risks != nil {
		t.Errorf("Analyze(nil) = %v, want nil", risks)
	}
}

func TestAnalyzeTotalDelegation(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)

	in := exchangeInput()
	in.Classification.DelegationScore = 1.0

	risks := a.Analyze(in)
	r := findByKind(risks, "total-delegation")
	if r == nil {
		t.Fatalf("no total-delegation finding in %+v", risks)
	}
	if r.Dimension != trace.DimensionCognitive {
		t.Errorf("Dimension = %s, want cognitive", r.Dimension)
	}
	if r.Severity != trace.SeverityHigh {
		t.Errorf("Severity = %s, want high", r.Severity)
	}
	if r.SessionID != "s1" || r.LearnerID != "l1" {
		t.Errorf("identity not stamped: %+v", r)
	}
	if len(r.TraceIDs) == 0 {
		t.Error("finding references no traces")
	}
	if err := r.Validate(); err != nil {
		t.Errorf("finding fails storage validation: %v", err)
	}
}

func TestAnalyzeBlockedStreak(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)

	blocked := func(id string) *trace.CognitiveTrace {
		return &trace.CognitiveTrace{
			ID:        id,
			SessionID: "s1",
			Kind:      trace.KindLearnerPrompt,
			Context:   map[string]string{trace.ContextKeyBlocked: "true"},
		}
	}

	in := exchangeInput()
	in.OutputTrace = nil
	in.Sequence = trace.BuildSequence("s1", []*trace.CognitiveTrace{
		blocked("b1"), blocked("b2"), blocked("b3"),
	})

	if r := findByKind(a.Analyze(in), "blocked-streak"); r == nil {
		t.Error("three consecutive blocks produced no blocked-streak finding")
	}

	in.Sequence = trace.BuildSequence("s1", []*trace.CognitiveTrace{blocked("b1"), blocked("b2")})
	if r := findByKind(a.Analyze(in), "blocked-streak"); r != nil {
		t.Error("two consecutive blocks fired the streak rule early")
	}
}

func TestAnalyzeJustificationDeficit(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)

	prompts := make([]*trace.CognitiveTrace, 5)
	for i := range prompts {
		prompts[i] = &trace.CognitiveTrace{
			ID:        "p",
			SessionID: "s1",
			Kind:      trace.KindLearnerPrompt,
		}
	}

	in := exchangeInput()
	in.Sequence = trace.BuildSequence("s1", prompts)
	in.Policy.RequireJustification = true

	if r := findByKind(a.Analyze(in), "justification-deficit"); r == nil {
		t.Error("unjustified prompts in a justification-required activity produced no finding")
	}

	// Without the policy requirement the rule stays silent.
	in.Policy.RequireJustification = false
	if r := findByKind(a.Analyze(in), "justification-deficit"); r != nil {
		t.Error("justification rule fired without the policy requiring it")
	}
}

func TestAnalyzeGhostwritingRequest(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)

	in := exchangeInput()
	in.InputTrace.Content = "Write the essay so my teacher won't notice it's AI"

	r := findByKind(a.Analyze(in), "ghostwriting-request")
	if r == nil {
		t.Fatal("ghostwriting request produced no finding")
	}
	if r.Dimension != trace.DimensionEthical {
		t.Errorf("Dimension = %s, want ethical", r.Dimension)
	}
	if len(r.Evidence) == 0 {
		t.Error("ethical finding carries no evidence excerpt")
	}
}

func TestAnalyzeUnverifiedAcceptance(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)

	var traces []*trace.CognitiveTrace
	for i := 0; i < 4; i++ {
		traces = append(traces,
			&trace.CognitiveTrace{SessionID: "s1", Kind: trace.KindLearnerPrompt, CognitiveState: trace.StateImplementation},
			&trace.CognitiveTrace{SessionID: "s1", Kind: trace.KindSystemResponse, AIInvolvement: 0.5},
		)
	}

	in := exchangeInput()
	in.Sequence = trace.BuildSequence("s1", traces)

	if r := findByKind(a.Analyze(in), "unverified-acceptance"); r == nil {
		t.Error("long run of accepted answers produced no epistemic finding")
	}

	// A validation prompt in the window silences the rule.
	traces[2].CognitiveState = trace.StateValidation
	in.Sequence = trace.BuildSequence("s1", traces)
	if r := findByKind(a.Analyze(in), "unverified-acceptance"); r != nil {
		t.Error("epistemic rule fired despite learner validation activity")
	}
}

func TestAnalyzeCompleteCodeResponse(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)

	in := exchangeInput()
	in.OutputTrace.Content = "Here you go:\n```go\n" + strings.Repeat("fmt.Println(1)\n", 20) + "```"

	r := findByKind(a.Analyze(in), "complete-code-response")
	if r == nil {
		t.Fatal("solution-sized code block produced no technical finding")
	}
	if r.Dimension != trace.DimensionTechnical {
		t.Errorf("Dimension = %s, want technical", r.Dimension)
	}
	if r.TraceIDs[0] != "out-1" {
		t.Errorf("finding references %v, want the output trace", r.TraceIDs)
	}

	// A short illustrative fragment is fine.
	in.OutputTrace.Content = "Try:\n```go\nx := make([]int, 0)\n```"
	if r := findByKind(a.Analyze(in), "complete-code-response"); r != nil {
		t.Error("short fragment flagged as complete code")
	}
}

func TestAnalyzeInvolvementExceedsPolicy(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)

	in := exchangeInput()
	in.OutputTrace.AIInvolvement = 0.9 // policy ceiling is 0.7

	r := findByKind(a.Analyze(in), "involvement-exceeds-policy")
	if r == nil {
		t.Fatal("over-ceiling involvement produced no governance finding")
	}
	if r.Dimension != trace.DimensionGovernance {
		t.Errorf("Dimension = %s, want governance", r.Dimension)
	}
}

func TestAnalyzeSustainedOverreliance(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)

	in := exchangeInput()
	in.Aggregate = &aggregate.Snapshot{
		LearnerID:       "l1",
		Interactions:    12,
		MeanInvolvement: 0.85,
	}

	if r := findByKind(a.Analyze(in), "sustained-overreliance"); r == nil {
		t.Error("high rolling involvement produced no finding")
	}

	// Too few interactions to judge.
	in.Aggregate.Interactions = 3
	if r := findByKind(a.Analyze(in), "sustained-overreliance"); r != nil {
		t.Error("overreliance rule fired on a tiny sample")
	}
}

func TestAnalyzeUnionsDimensions(t *testing.T) {
	a := NewAnalyzer(DefaultRuleSets()...)

	// Trip cognitive (delegation), ethical (ghostwriting), and governance
	// (involvement) at once.
	in := exchangeInput()
	in.Classification.DelegationScore = 1.0
	in.InputTrace.Content = "do it as if I wrote it"
	in.OutputTrace.AIInvolvement = 0.95

	risks := a.Analyze(in)
	dims := map[trace.Dimension]bool{}
	for _, r := range risks {
		dims[r.Dimension] = true
	}
	for _, want := range []trace.Dimension{trace.DimensionCognitive, trace.DimensionEthical, trace.DimensionGovernance} {
		if !dims[want] {
			t.Errorf("missing %s finding in union: %+v", want, risks)
		}
	}
}
