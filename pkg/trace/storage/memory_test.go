package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cognitia-edu/minerva/pkg/trace"
)

func newTrace(id, sessionID string, kind trace.Kind, createdAt time.Time) *trace.CognitiveTrace {
	return &trace.CognitiveTrace{
		ID:        id,
		SessionID: sessionID,
		LearnerID: "l1",
		Kind:      kind,
		Content:   "content " + id,
		CreatedAt: createdAt,
	}
}

func newRisk(id, sessionID string) *trace.Risk {
	return &trace.Risk{
		ID:         id,
		SessionID:  sessionID,
		Kind:       "total-delegation",
		Severity:   trace.SeverityHigh,
		Dimension:  trace.DimensionCognitive,
		TraceIDs:   []string{"t1"},
		DetectedAt: time.Now().UTC(),
	}
}

func TestMemoryStorageRecentTracesOrderAndLimit(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		tr := newTrace(fmt.Sprintf("t%d", i), "s1", trace.KindLearnerPrompt, base.Add(time.Duration(i)*time.Second))
		if err := s.SaveTrace(ctx, tr); err != nil {
			t.Fatalf("SaveTrace: %v", err)
		}
	}

	got, err := s.RecentTraces(ctx, "s1", 3)
	if err != nil {
		t.Fatalf("RecentTraces: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Oldest first among the most recent three.
	for i, want := range []string{"t2", "t3", "t4"} {
		if got[i].ID != want {
			t.Errorf("got[%d].ID = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestMemoryStorageSessionIsolation(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	if err := s.SaveTrace(ctx, newTrace("a", "s1", trace.KindLearnerPrompt, time.Now())); err != nil {
		t.Fatalf("SaveTrace: %v", err)
	}
	if err := s.SaveTrace(ctx, newTrace("b", "s2", trace.KindLearnerPrompt, time.Now())); err != nil {
		t.Fatalf("SaveTrace: %v", err)
	}

	got, err := s.RecentTraces(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("RecentTraces: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("RecentTraces(s1) = %v, want [a]", got)
	}
}

func TestMemoryStorageDefensiveCopies(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	original := newTrace("t1", "s1", trace.KindLearnerPrompt, time.Now())
	original.Context = map[string]string{"k": "v"}
	if err := s.SaveTrace(ctx, original); err != nil {
		t.Fatalf("SaveTrace: %v", err)
	}

	// Mutating the caller's trace after save must not affect the store.
	original.Content = "mutated"
	original.Context["k"] = "mutated"

	got, err := s.RecentTraces(ctx, "s1", 1)
	if err != nil {
		t.Fatalf("RecentTraces: %v", err)
	}
	if got[0].Content != "content t1" {
		t.Errorf("stored content mutated: %q", got[0].Content)
	}
	if got[0].Context["k"] != "v" {
		t.Errorf("stored context mutated: %q", got[0].Context["k"])
	}
}

func TestMemoryStorageRiskLifecycle(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	if err := s.SaveRisk(ctx, newRisk("r1", "s1")); err != nil {
		t.Fatalf("SaveRisk: %v", err)
	}

	invalid := newRisk("r2", "s1")
	invalid.TraceIDs = nil
	if err := s.SaveRisk(ctx, invalid); err == nil {
		t.Error("SaveRisk accepted a risk without trace references")
	}

	risks, err := s.ListRisks(ctx, "s1")
	if err != nil {
		t.Fatalf("ListRisks: %v", err)
	}
	if len(risks) != 1 {
		t.Fatalf("len(risks) = %d, want 1", len(risks))
	}

	if err := s.SetRiskResolved(ctx, "r1", true); err != nil {
		t.Fatalf("SetRiskResolved: %v", err)
	}
	risks, _ = s.ListRisks(ctx, "s1")
	if !risks[0].Resolved {
		t.Error("risk not marked resolved")
	}

	if err := s.SetRiskResolved(ctx, "missing", true); err == nil {
		t.Error("SetRiskResolved on unknown id should fail")
	}
}

func TestMemoryStorageRetentionDeletes(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()
	ctx := context.Background()

	old := newTrace("old", "s1", trace.KindLearnerPrompt, time.Now().Add(-48*time.Hour))
	recent := newTrace("recent", "s1", trace.KindLearnerPrompt, time.Now())
	if err := s.SaveTrace(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTrace(ctx, recent); err != nil {
		t.Fatal(err)
	}

	n, err := s.DeleteTracesBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteTracesBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d traces, want 1", n)
	}

	got, _ := s.RecentTraces(ctx, "s1", 10)
	if len(got) != 1 || got[0].ID != "recent" {
		t.Errorf("remaining traces = %v, want [recent]", got)
	}

	// Unresolved risks survive pruning; resolved ones age out.
	resolved := newRisk("resolved", "s1")
	resolved.DetectedAt = time.Now().Add(-48 * time.Hour)
	unresolved := newRisk("unresolved", "s1")
	unresolved.DetectedAt = time.Now().Add(-48 * time.Hour)
	if err := s.SaveRisk(ctx, resolved); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRisk(ctx, unresolved); err != nil {
		t.Fatal(err)
	}
	if err := s.SetRiskResolved(ctx, "resolved", true); err != nil {
		t.Fatal(err)
	}

	n, err = s.DeleteResolvedRisksBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteResolvedRisksBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d risks, want 1", n)
	}
	risks, _ := s.ListRisks(ctx, "s1")
	if len(risks) != 1 || risks[0].ID != "unresolved" {
		t.Errorf("remaining risks = %v, want [unresolved]", risks)
	}
}
