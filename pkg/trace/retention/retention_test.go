package retention

import (
	"context"
	"testing"
	"time"

	"cognitia-edu/minerva/pkg/trace"
	"cognitia-edu/minerva/pkg/trace/storage"
)

func TestRunOncePrunesAgedRecords(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	saveTrace := func(id string, age time.Duration) {
		t.Helper()
		err := store.SaveTrace(ctx, &trace.CognitiveTrace{
			ID:        id,
			SessionID: "s1",
			Kind:      trace.KindLearnerPrompt,
			CreatedAt: now.Add(-age),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	saveRisk := func(id string, age time.Duration, resolved bool) {
		t.Helper()
		err := store.SaveRisk(ctx, &trace.Risk{
			ID:         id,
			SessionID:  "s1",
			Kind:       "total-delegation",
			Severity:   trace.SeverityHigh,
			Dimension:  trace.DimensionCognitive,
			TraceIDs:   []string{"t-old"},
			DetectedAt: now.Add(-age),
			Resolved:   resolved,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	saveTrace("t-old", 48*time.Hour)
	saveTrace("t-new", time.Hour)
	saveRisk("r-resolved-old", 48*time.Hour, true)
	saveRisk("r-unresolved-old", 48*time.Hour, false)
	saveRisk("r-resolved-new", time.Hour, true)

	e := NewEnforcer(store, Config{
		TraceRetention: 24 * time.Hour,
		RiskRetention:  24 * time.Hour,
	}, nil)
	if err := e.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if got := store.TraceCount(); got != 1 {
		t.Errorf("traces remaining = %d, want 1", got)
	}

	risks, err := store.ListRisks(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	remaining := map[string]bool{}
	for _, r := range risks {
		remaining[r.ID] = true
	}
	if remaining["r-resolved-old"] {
		t.Error("aged resolved risk survived the pass")
	}
	if !remaining["r-unresolved-old"] {
		t.Error("unresolved risk was pruned by age")
	}
	if !remaining["r-resolved-new"] {
		t.Error("in-window resolved risk was pruned")
	}
}

func TestRunOnceIdleIsHarmless(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer store.Close()

	e := NewEnforcer(store, DefaultConfig(), nil)
	if err := e.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce on empty storage: %v", err)
	}
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer store.Close()

	e := NewEnforcer(store, Config{Schedule: "not a cron expression"}, nil)
	if err := e.Start(); err == nil {
		e.Stop()
		t.Error("Start accepted an invalid schedule")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	store := storage.NewMemoryStorage()
	defer store.Close()

	e := NewEnforcer(store, DefaultConfig(), nil)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Stop()
}
