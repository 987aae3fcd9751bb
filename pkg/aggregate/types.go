package aggregate

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no aggregate exists for a learner/activity pair.
var ErrNotFound = errors.New("aggregate: not found")

// Snapshot is the rolling per-learner, per-activity usage aggregate. It feeds
// risk rules and reviewer dashboards without replaying the full trace log.
type Snapshot struct {
	LearnerID  string `json:"learner_id"`
	ActivityID string `json:"activity_id"`

	// Interactions counts all processed exchanges, blocked ones included.
	Interactions int64 `json:"interactions"`

	// Blocked counts exchanges vetoed by governance.
	Blocked int64 `json:"blocked"`

	// MeanDelegation is the running mean delegation score of the learner's
	// prompts, in [0,1].
	MeanDelegation float64 `json:"mean_delegation"`

	// MeanInvolvement is the running mean AI involvement of generated
	// responses, in [0,1]. Blocked exchanges do not contribute.
	MeanInvolvement float64 `json:"mean_involvement"`

	// LastInteraction is when the aggregate was last updated.
	LastInteraction time.Time `json:"last_interaction"`
}

// Sample is one exchange's contribution to the aggregates.
type Sample struct {
	LearnerID  string
	ActivityID string

	// Delegation is the classifier's delegation score for the prompt.
	Delegation float64

	// Involvement is the AI involvement of the generated response. Ignored
	// when Blocked is true.
	Involvement float64

	// Blocked reports whether governance vetoed the exchange.
	Blocked bool
}

// Store maintains usage aggregates. Implementations must be safe for
// concurrent use.
type Store interface {
	// Record folds one exchange into the learner/activity aggregate.
	Record(ctx context.Context, s Sample) error

	// Get returns the current snapshot, or ErrNotFound.
	Get(ctx context.Context, learnerID, activityID string) (*Snapshot, error)

	// Close releases any resources held by the store.
	Close() error
}

// fold applies one sample to a snapshot in place.
func fold(snap *Snapshot, s Sample, now time.Time) {
	prior := float64(snap.Interactions)
	snap.MeanDelegation = (snap.MeanDelegation*prior + s.Delegation) / (prior + 1)
	snap.Interactions++

	if s.Blocked {
		snap.Blocked++
	} else {
		// Involvement averages over generated responses only.
		generated := float64(snap.Interactions - snap.Blocked - 1)
		if generated < 0 {
			generated = 0
		}
		snap.MeanInvolvement = (snap.MeanInvolvement*generated + s.Involvement) / (generated + 1)
	}

	snap.LastInteraction = now
}
