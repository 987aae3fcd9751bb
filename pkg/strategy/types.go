package strategy

import (
	"context"

	"cognitia-edu/minerva/pkg/classifier"
	"cognitia-edu/minerva/pkg/trace"
)

// Mode is the session interaction mode.
type Mode string

const (
	// ModeTutor runs the four tutoring sub-strategies.
	ModeTutor Mode = "tutor"
	// ModeSimulator plays a named professional role.
	ModeSimulator Mode = "simulator"
	// ModeEvaluator assesses the learner's process.
	ModeEvaluator Mode = "evaluator"
)

// Kind identifies one concrete response strategy. The set is closed: the
// router dispatches over a fixed table and unknown kinds are construction
// errors, not runtime fallthroughs.
type Kind string

const (
	KindSocratic         Kind = "socratic"
	KindExplicative      Kind = "explicative"
	KindGuidedHint       Kind = "guided-hint"
	KindMetacognitive    Kind = "metacognitive"
	KindSimulator        Kind = "simulator"
	KindProcessEvaluator Kind = "process-evaluator"
)

// Request carries everything a strategy needs to produce a response.
type Request struct {
	// Prompt is the learner's message.
	Prompt string

	// Classification is the classifier's output for the prompt.
	Classification *classifier.Classification

	// History is the bounded recent session history, oldest first.
	History []*trace.CognitiveTrace

	// HintLevel is the graduated-hint level for this exchange, 1..3.
	// Only the guided-hint strategy reads it.
	HintLevel int

	// Role is the professional role to play. Only the simulator reads it.
	Role string
}

// Response is a strategy's output.
type Response struct {
	// Text is the generated response.
	Text string

	// AgentUsed tags the strategy that produced the text.
	AgentUsed string

	// AIInvolvement estimates the AI share of the produced content.
	AIInvolvement float64

	// Cached reports whether the response was served from the cache.
	Cached bool
}

// Strategy is one concrete response behavior. Implementations must be
// thread-safe; they are invoked concurrently from multiple in-flight
// interactions.
type Strategy interface {
	// Kind returns the strategy's identity tag.
	Kind() Kind

	// Respond generates the response for the request. Cancellation and the
	// generation timeout travel through ctx.
	Respond(ctx context.Context, req *Request) (*Response, error)
}
