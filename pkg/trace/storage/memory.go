package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"cognitia-edu/minerva/pkg/trace"
)

// MemoryStorage implements trace.Storage with in-memory maps. It is intended
// for tests and development; records do not survive a restart.
type MemoryStorage struct {
	mu     sync.RWMutex
	traces map[string]*trace.CognitiveTrace
	risks  map[string]*trace.Risk

	// bySession keeps insertion order per session so RecentTraces can
	// return oldest-first without re-sorting on every read.
	bySession map[string][]string
}

// NewMemoryStorage creates an empty in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		traces:    make(map[string]*trace.CognitiveTrace),
		risks:     make(map[string]*trace.Risk),
		bySession: make(map[string][]string),
	}
}

// SaveTrace persists a copy of the trace. The stored record is decoupled from
// the caller's value so later caller mutations cannot reach storage.
func (s *MemoryStorage) SaveTrace(ctx context.Context, t *trace.CognitiveTrace) error {
	if t == nil || t.ID == "" {
		return trace.NewStorageError("memory", "save_trace", &trace.ValidationError{Field: "id", Reason: "trace id is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyTrace(t)
	s.traces[stored.ID] = stored
	s.bySession[stored.SessionID] = append(s.bySession[stored.SessionID], stored.ID)
	return nil
}

// SaveRisk persists a copy of the risk finding after validating invariants.
func (s *MemoryStorage) SaveRisk(ctx context.Context, r *trace.Risk) error {
	if r == nil {
		return trace.NewStorageError("memory", "save_risk", &trace.ValidationError{Field: "risk", Reason: "risk is nil"})
	}
	if err := r.Validate(); err != nil {
		return trace.NewStorageError("memory", "save_risk", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyRisk(r)
	s.risks[stored.ID] = stored
	return nil
}

// RecentTraces returns up to limit traces for the session, oldest first.
// A limit <= 0 returns all traces for the session.
func (s *MemoryStorage) RecentTraces(ctx context.Context, sessionID string, limit int) ([]*trace.CognitiveTrace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.bySession[sessionID]
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}

	out := make([]*trace.CognitiveTrace, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.traces[id]; ok {
			out = append(out, copyTrace(t))
		}
	}
	return out, nil
}

// ListRisks returns all risk findings for the session, oldest first.
func (s *MemoryStorage) ListRisks(ctx context.Context, sessionID string) ([]*trace.Risk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*trace.Risk, 0)
	for _, r := range s.risks {
		if r.SessionID == sessionID {
			out = append(out, copyRisk(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.Before(out[j].DetectedAt) })
	return out, nil
}

// SetRiskResolved toggles the resolution flag on a stored finding.
func (s *MemoryStorage) SetRiskResolved(ctx context.Context, riskID string, resolved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.risks[riskID]
	if !ok {
		return trace.NewStorageError("memory", "set_risk_resolved", &trace.NotFoundError{Entity: "risk", ID: riskID})
	}
	r.Resolved = resolved
	return nil
}

// DeleteTracesBefore removes traces created before the cutoff.
func (s *MemoryStorage) DeleteTracesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, t := range s.traces {
		if t.CreatedAt.Before(cutoff) {
			delete(s.traces, id)
			removed++
		}
	}

	// Rebuild session indexes without the removed ids.
	for session, ids := range s.bySession {
		kept := ids[:0]
		for _, id := range ids {
			if _, ok := s.traces[id]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(s.bySession, session)
		} else {
			s.bySession[session] = kept
		}
	}

	return removed, nil
}

// DeleteResolvedRisksBefore removes resolved findings detected before the
// cutoff. Unresolved findings are retained regardless of age.
func (s *MemoryStorage) DeleteResolvedRisksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, r := range s.risks {
		if r.Resolved && r.DetectedAt.Before(cutoff) {
			delete(s.risks, id)
			removed++
		}
	}
	return removed, nil
}

// Close releases resources. Memory storage holds none.
func (s *MemoryStorage) Close() error { return nil }

// TraceCount returns the number of stored traces. Test helper.
func (s *MemoryStorage) TraceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.traces)
}

// RiskCount returns the number of stored risk findings. Test helper.
func (s *MemoryStorage) RiskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.risks)
}

func copyTrace(t *trace.CognitiveTrace) *trace.CognitiveTrace {
	dup := *t
	if t.Context != nil {
		dup.Context = make(map[string]string, len(t.Context))
		for k, v := range t.Context {
			dup.Context[k] = v
		}
	}
	return &dup
}

func copyRisk(r *trace.Risk) *trace.Risk {
	dup := *r
	dup.Evidence = append([]string(nil), r.Evidence...)
	dup.Recommendations = append([]string(nil), r.Recommendations...)
	dup.TraceIDs = append([]string(nil), r.TraceIDs...)
	return &dup
}
