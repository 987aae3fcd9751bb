package aggregate

import (
	"context"
	"errors"
	"math"
	"testing"
)

func record(t *testing.T, store Store, s Sample) {
	t.Helper()
	if err := store.Record(context.Background(), s); err != nil {
		t.Fatalf("Record: %v", err)
	}
}

func TestMemoryStoreRunningMeans(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	record(t, store, Sample{LearnerID: "l1", ActivityID: "a1", Delegation: 0.2, Involvement: 0.4})
	record(t, store, Sample{LearnerID: "l1", ActivityID: "a1", Delegation: 0.6, Involvement: 0.8})

	snap, err := store.Get(context.Background(), "l1", "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.Interactions != 2 {
		t.Errorf("Interactions = %d, want 2", snap.Interactions)
	}
	if math.Abs(snap.MeanDelegation-0.4) > 1e-9 {
		t.Errorf("MeanDelegation = %v, want 0.4", snap.MeanDelegation)
	}
	if math.Abs(snap.MeanInvolvement-0.6) > 1e-9 {
		t.Errorf("MeanInvolvement = %v, want 0.6", snap.MeanInvolvement)
	}
	if snap.LastInteraction.IsZero() {
		t.Error("LastInteraction not stamped")
	}
}

func TestMemoryStoreBlockedExchanges(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	// A blocked exchange counts toward interactions and delegation but must
	// not drag the involvement mean down.
	record(t, store, Sample{LearnerID: "l1", ActivityID: "a1", Delegation: 0.1, Involvement: 0.5})
	record(t, store, Sample{LearnerID: "l1", ActivityID: "a1", Delegation: 0.9, Blocked: true})

	snap, err := store.Get(context.Background(), "l1", "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.Interactions != 2 || snap.Blocked != 1 {
		t.Errorf("counts = %d/%d, want 2/1", snap.Interactions, snap.Blocked)
	}
	if math.Abs(snap.MeanDelegation-0.5) > 1e-9 {
		t.Errorf("MeanDelegation = %v, want 0.5", snap.MeanDelegation)
	}
	if math.Abs(snap.MeanInvolvement-0.5) > 1e-9 {
		t.Errorf("MeanInvolvement = %v, want unchanged 0.5", snap.MeanInvolvement)
	}
}

func TestMemoryStoreKeysByLearnerAndActivity(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	record(t, store, Sample{LearnerID: "l1", ActivityID: "a1", Delegation: 0.9})
	record(t, store, Sample{LearnerID: "l1", ActivityID: "a2", Delegation: 0.1})

	s1, err := store.Get(context.Background(), "l1", "a1")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := store.Get(context.Background(), "l1", "a2")
	if err != nil {
		t.Fatal(err)
	}
	if s1.MeanDelegation == s2.MeanDelegation {
		t.Error("aggregates not isolated per activity")
	}
	if s1.Interactions != 1 || s2.Interactions != 1 {
		t.Errorf("Interactions = %d/%d, want 1/1", s1.Interactions, s2.Interactions)
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	if _, err := store.Get(context.Background(), "nobody", "nothing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get unknown = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	record(t, store, Sample{LearnerID: "l1", ActivityID: "a1", Delegation: 0.5, Involvement: 0.5})

	snap, _ := store.Get(context.Background(), "l1", "a1")
	snap.Interactions = 99

	again, _ := store.Get(context.Background(), "l1", "a1")
	if again.Interactions != 1 {
		t.Error("caller mutation reached the stored snapshot")
	}
}
