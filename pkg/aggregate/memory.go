package aggregate

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps aggregates in process memory. Suitable for tests and
// single-process deployments that tolerate losing aggregates on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory aggregate store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

func aggregateKey(learnerID, activityID string) string {
	return learnerID + "\x00" + activityID
}

// Record folds one exchange into the learner/activity aggregate.
func (m *MemoryStore) Record(_ context.Context, s Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := aggregateKey(s.LearnerID, s.ActivityID)
	snap, ok := m.snaps[key]
	if !ok {
		snap = &Snapshot{LearnerID: s.LearnerID, ActivityID: s.ActivityID}
		m.snaps[key] = snap
	}
	fold(snap, s, time.Now().UTC())
	return nil
}

// Get returns a copy of the current snapshot, or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, learnerID, activityID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snaps[aggregateKey(learnerID, activityID)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
