package governance

import (
	"math"
	"testing"

	"cognitia-edu/minerva/pkg/classifier"
)

func permissivePolicy() *Policy {
	return &Policy{
		MaxDelegation:          0.8,
		MaxAIInvolvement:       0.7,
		MaxHelpLevel:           0.6,
		BlockCompleteSolutions: true,
	}
}

func TestEvaluateDelegationBlocked(t *testing.T) {
	e := NewEngine(Messages{}, nil)

	cls := &classifier.Classification{
		RequestType:     classifier.RequestDelegation,
		DelegationScore: 1.0,
	}
	d := e.Evaluate(cls, permissivePolicy(), nil)
	if !d.Blocked {
		t.Fatal("total delegation was not blocked")
	}
	if d.Reason != ReasonDelegationBlocked {
		t.Errorf("Reason = %s, want %s", d.Reason, ReasonDelegationBlocked)
	}
	if d.PedagogicalMessage == "" {
		t.Error("blocked decision carries no pedagogical message")
	}
}

func TestEvaluateThresholdIsInclusive(t *testing.T) {
	e := NewEngine(Messages{}, nil)

	// Score exactly at the threshold blocks.
	cls := &classifier.Classification{DelegationScore: 0.8}
	if d := e.Evaluate(cls, permissivePolicy(), nil); !d.Blocked {
		t.Error("score equal to max_delegation was not blocked")
	}

	cls = &classifier.Classification{DelegationScore: 0.79}
	if d := e.Evaluate(cls, permissivePolicy(), nil); d.Blocked {
		t.Error("score below max_delegation was blocked")
	}
}

func TestEvaluateHelpLevelExceeded(t *testing.T) {
	e := NewEngine(Messages{}, nil)

	cls := &classifier.Classification{
		RequestType:            classifier.RequestImplementationHelp,
		DelegationScore:        0.4,
		SuggestedAIInvolvement: 0.7,
	}
	d := e.Evaluate(cls, permissivePolicy(), nil)
	if !d.Blocked {
		t.Fatal("over-limit implementation help was not blocked")
	}
	if d.Reason != ReasonHelpLevelExceeded {
		t.Errorf("Reason = %s, want %s", d.Reason, ReasonHelpLevelExceeded)
	}

	// Same involvement but a different request type passes rule (b).
	cls.RequestType = classifier.RequestConceptualQuery
	if d := e.Evaluate(cls, permissivePolicy(), nil); d.Blocked {
		t.Error("conceptual query blocked by the help-level rule")
	}

	// BlockCompleteSolutions off disables rule (b).
	p := permissivePolicy()
	p.BlockCompleteSolutions = false
	cls.RequestType = classifier.RequestImplementationHelp
	if d := e.Evaluate(cls, p, nil); d.Blocked {
		t.Error("help-level rule fired with block_complete_solutions disabled")
	}
}

func TestEvaluateBlockedStreakTightensCeiling(t *testing.T) {
	e := NewEngine(Messages{}, nil)
	cls := &classifier.Classification{DelegationScore: 0.5}

	// Well under the 0.8 ceiling without history.
	if d := e.Evaluate(cls, permissivePolicy(), nil); d.Blocked {
		t.Fatal("mid-range score blocked without a streak")
	}
	if d := e.Evaluate(cls, permissivePolicy(), &LearnerHistory{BlockedStreak: 2}); d.Blocked {
		t.Error("two blocks tightened the ceiling early")
	}

	// A three-block streak halves the ceiling to 0.4, catching the 0.5.
	d := e.Evaluate(cls, permissivePolicy(), &LearnerHistory{BlockedStreak: 3})
	if !d.Blocked {
		t.Fatal("streak did not tighten the delegation ceiling")
	}
	if d.Reason != ReasonDelegationBlocked {
		t.Errorf("Reason = %s, want %s", d.Reason, ReasonDelegationBlocked)
	}
}

func TestEvaluateRuleOrder(t *testing.T) {
	e := NewEngine(Messages{}, nil)

	// Both rules would fire; the delegation rule wins because it is first.
	cls := &classifier.Classification{
		RequestType:            classifier.RequestImplementationHelp,
		DelegationScore:        0.9,
		SuggestedAIInvolvement: 0.9,
	}
	d := e.Evaluate(cls, permissivePolicy(), nil)
	if d.Reason != ReasonDelegationBlocked {
		t.Errorf("Reason = %s, want first-match %s", d.Reason, ReasonDelegationBlocked)
	}
}

func TestEvaluateNilPolicyBlocks(t *testing.T) {
	e := NewEngine(Messages{}, nil)
	d := e.Evaluate(&classifier.Classification{DelegationScore: 0}, nil, nil)
	if !d.Blocked {
		t.Error("nil policy did not block")
	}
}

func TestEvaluateInvalidThresholdsFailRestrictive(t *testing.T) {
	e := NewEngine(Messages{}, nil)

	tests := []struct {
		name string
		max  float64
	}{
		{"missing threshold reads as zero", 0},
		{"negative", -0.5},
		{"above one", 1.5},
		{"nan", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := permissivePolicy()
			p.MaxDelegation = tt.max
			d := e.Evaluate(&classifier.Classification{DelegationScore: 0.1}, p, nil)
			if !d.Blocked {
				t.Error("invalid max_delegation did not block everything")
			}
		})
	}
}

func TestCustomMessages(t *testing.T) {
	e := NewEngine(Messages{DelegationBlocked: "custom redirection"}, nil)
	d := e.Evaluate(&classifier.Classification{DelegationScore: 1.0}, permissivePolicy(), nil)
	if d.PedagogicalMessage != "custom redirection" {
		t.Errorf("PedagogicalMessage = %q, want custom text", d.PedagogicalMessage)
	}
}
