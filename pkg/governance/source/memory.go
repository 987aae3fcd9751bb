package source

import (
	"sync"

	"cognitia-edu/minerva/pkg/governance"
	"cognitia-edu/minerva/pkg/trace"
)

// MemorySource serves policies from an in-memory map. Intended for tests and
// embedded use.
type MemorySource struct {
	mu       sync.RWMutex
	policies map[string]*governance.Policy
	fallback *governance.Policy
}

// NewMemorySource creates a memory source with the given fallback policy for
// unknown activities. A nil fallback uses governance.DefaultPolicy.
func NewMemorySource(fallback *governance.Policy) *MemorySource {
	if fallback == nil {
		fallback = governance.DefaultPolicy()
	}
	return &MemorySource{
		policies: make(map[string]*governance.Policy),
		fallback: fallback,
	}
}

// SetPolicy registers or replaces the policy for an activity.
func (s *MemorySource) SetPolicy(activityID string, p *governance.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[activityID] = p
}

// ActivePolicy returns a copy of the activity's policy, or the fallback.
func (s *MemorySource) ActivePolicy(activityID, institutionID string) (*governance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[activityID]
	if !ok {
		p = s.fallback
	}

	out := *p
	out.ActivityID = activityID
	if out.InstitutionID == "" {
		out.InstitutionID = institutionID
	}
	if p.RiskThresholds != nil {
		out.RiskThresholds = make(map[trace.Dimension]float64, len(p.RiskThresholds))
		for k, v := range p.RiskThresholds {
			out.RiskThresholds[k] = v
		}
	}
	return &out, nil
}
