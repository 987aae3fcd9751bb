// Package recorder builds and persists cognitive traces for both directions
// of an exchange. Traces are immutable once saved; the recorder is the only
// component that constructs them.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cognitia-edu/minerva/pkg/trace"
)

// Exchange identifies the session an interaction belongs to.
type Exchange struct {
	SessionID  string
	LearnerID  string
	ActivityID string

	// Depth is the capture depth configured for the activity.
	Depth trace.Depth
}

// Recorder persists traces synchronously. Writes happen on the interaction
// path before the response is returned, so a learner never receives a
// response whose prompt went unrecorded.
type Recorder struct {
	storage trace.Storage
	logger  *slog.Logger
}

// New creates a recorder over the given storage.
func New(storage trace.Storage, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		storage: storage,
		logger:  logger.With("component", "recorder"),
	}
}

// RecordInput persists the learner-prompt half of an exchange and returns the
// stored trace.
func (r *Recorder) RecordInput(ctx context.Context, ex Exchange, content string, state trace.CognitiveState, justification string, annotations map[string]string) (*trace.CognitiveTrace, error) {
	t := r.newTrace(ex, trace.KindLearnerPrompt, content, annotations)
	t.CognitiveState = state
	t.Justification = justification

	if err := r.storage.SaveTrace(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RecordOutput persists the system-response half of an exchange and returns
// the stored trace. The agent tag and involvement estimate travel in the
// trace so downstream analysis needs no side channel.
func (r *Recorder) RecordOutput(ctx context.Context, ex Exchange, content, agent string, involvement float64, state trace.CognitiveState) (*trace.CognitiveTrace, error) {
	t := r.newTrace(ex, trace.KindSystemResponse, content, map[string]string{
		trace.ContextKeyAgent: agent,
	})
	t.CognitiveState = state
	t.AIInvolvement = involvement

	if err := r.storage.SaveTrace(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// newTrace assembles a fresh trace with identity and capture metadata. Depth
// defaults to interactional when the exchange leaves it unset.
func (r *Recorder) newTrace(ex Exchange, kind trace.Kind, content string, annotations map[string]string) *trace.CognitiveTrace {
	depth := ex.Depth
	if depth == "" {
		depth = trace.DepthInteractional
	}

	ctxCopy := make(map[string]string, len(annotations))
	for k, v := range annotations {
		ctxCopy[k] = v
	}

	return &trace.CognitiveTrace{
		ID:         uuid.New().String(),
		SessionID:  ex.SessionID,
		LearnerID:  ex.LearnerID,
		ActivityID: ex.ActivityID,
		Depth:      depth,
		Kind:       kind,
		Content:    content,
		Context:    ctxCopy,
		CreatedAt:  time.Now().UTC(),
	}
}
