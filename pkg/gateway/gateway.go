package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cognitia-edu/minerva/pkg/aggregate"
	"cognitia-edu/minerva/pkg/cache"
	"cognitia-edu/minerva/pkg/classifier"
	"cognitia-edu/minerva/pkg/governance"
	"cognitia-edu/minerva/pkg/risk"
	"cognitia-edu/minerva/pkg/strategy"
	"cognitia-edu/minerva/pkg/telemetry/metrics"
	"cognitia-edu/minerva/pkg/trace"
	"cognitia-edu/minerva/pkg/trace/recorder"
)

// historyLimit bounds the session history loaded per interaction.
const historyLimit = 20

// ContextKeyMode is the trace context key carrying the session mode.
const ContextKeyMode = "mode"

// Interaction is one learner exchange entering the gateway.
type Interaction struct {
	SessionID     string
	LearnerID     string
	ActivityID    string
	InstitutionID string

	// SessionToken isolates cache entries. Defaults to SessionID.
	SessionToken string

	// Mode selects the strategy family.
	Mode strategy.Mode

	// Prompt is the learner's message.
	Prompt string

	// Justification is the learner's stated reasoning, when supplied.
	Justification string

	// Role is the professional role for simulator mode.
	Role string

	// Context carries contextual metadata (exercise id, language).
	Context map[string]string

	// Depth overrides the capture depth for this exchange.
	Depth trace.Depth
}

// Result is the gateway's answer to one interaction.
type Result struct {
	// Blocked reports whether the policy gate vetoed generation.
	Blocked bool

	// Reason is set when Blocked is true.
	Reason governance.Reason

	// Message is the response text, or the pedagogical redirection when
	// blocked.
	Message string

	// AgentUsed tags the strategy that produced the response.
	AgentUsed string

	// CognitiveState is the classified problem-solving phase.
	CognitiveState trace.CognitiveState

	// AIInvolvement estimates the AI share of the response.
	AIInvolvement float64

	// Cached reports whether the response came from the cache.
	Cached bool

	// InputTraceID and OutputTraceID identify the persisted traces.
	// OutputTraceID is empty for blocked interactions.
	InputTraceID  string
	OutputTraceID string
}

// Components are the gateway's collaborators. Classifier, Engine, Policies,
// Router, Recorder, and Storage are required; the rest degrade gracefully
// when nil.
type Components struct {
	Classifier *classifier.Classifier
	Engine     *governance.Engine
	Policies   governance.Source
	Router     *strategy.Router
	Recorder   *recorder.Recorder
	Storage    trace.Storage

	Cache      *cache.Cache
	Aggregates aggregate.Store
	RiskPool   *risk.Pool
	Metrics    *metrics.Collector
	Logger     *slog.Logger
}

// Gateway runs the interaction pipeline: classify, gate, respond, record,
// then hand the exchange to async risk analysis.
type Gateway struct {
	c      Components
	logger *slog.Logger
}

// New creates a gateway over the given components.
func New(c Components) (*Gateway, error) {
	switch {
	case c.Classifier == nil:
		return nil, fmt.Errorf("gateway: classifier is required")
	case c.Engine == nil:
		return nil, fmt.Errorf("gateway: governance engine is required")
	case c.Policies == nil:
		return nil, fmt.Errorf("gateway: policy source is required")
	case c.Router == nil:
		return nil, fmt.Errorf("gateway: router is required")
	case c.Recorder == nil:
		return nil, fmt.Errorf("gateway: recorder is required")
	case c.Storage == nil:
		return nil, fmt.Errorf("gateway: trace storage is required")
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{c: c, logger: logger.With("component", "gateway")}, nil
}

// ProcessInteraction runs one exchange through the full pipeline. The only
// error it returns is a generation failure, which the caller may retry; every
// other problem is absorbed into logs or a block decision.
func (g *Gateway) ProcessInteraction(ctx context.Context, in *Interaction) (*Result, error) {
	history, err := g.c.Storage.RecentTraces(ctx, in.SessionID, historyLimit)
	if err != nil {
		// A history gap degrades classification, it does not stop the
		// exchange.
		g.logger.Warn("failed to load session history", "session_id", in.SessionID, "error", err)
		history = nil
	}

	cls := g.c.Classifier.Classify(ctx, in.Prompt, history)
	if cls.Source == classifier.SourceFallback && g.c.Metrics != nil {
		g.c.Metrics.RecordClassifierFallback()
	}

	policy, err := g.c.Policies.ActivePolicy(in.ActivityID, in.InstitutionID)
	if err != nil {
		// Evaluation with a nil policy blocks by default.
		g.logger.Error("failed to load policy", "activity_id", in.ActivityID, "error", err)
		policy = nil
	}

	seq := trace.BuildSequence(in.SessionID, history)
	decision := g.c.Engine.Evaluate(cls, policy, &governance.LearnerHistory{
		BlockedStreak: seq.BlockedStreak(),
	})

	ex := recorder.Exchange{
		SessionID:  in.SessionID,
		LearnerID:  in.LearnerID,
		ActivityID: in.ActivityID,
		Depth:      in.Depth,
	}

	if decision.Blocked {
		return g.blocked(ctx, in, ex, cls, policy, history, decision), nil
	}

	routeStart := time.Now()
	resp, err := g.c.Router.Route(ctx, &strategy.RouteRequest{
		SessionToken:   g.sessionToken(in),
		Mode:           in.Mode,
		Prompt:         in.Prompt,
		Context:        in.Context,
		Classification: cls,
		History:        history,
		Role:           in.Role,
	})
	if err != nil {
		if g.c.Metrics != nil {
			g.c.Metrics.RecordInteraction(string(in.Mode), "error")
		}
		return nil, fmt.Errorf("generating response: %w", err)
	}
	if g.c.Metrics != nil && !resp.Cached {
		g.c.Metrics.RecordBackendLatency(string(in.Mode), time.Since(routeStart))
	}
	g.observeCache(resp.Cached)

	inputTrace := g.recordInput(ctx, in, ex, cls, false)
	outputTrace, err := g.c.Recorder.RecordOutput(ctx, ex, resp.Text, resp.AgentUsed, resp.AIInvolvement, cls.CognitiveState)
	if err != nil {
		// Trace loss is an audit gap, not a reason to withhold the answer.
		g.logger.Error("failed to record response trace", "session_id", in.SessionID, "error", err)
		outputTrace = nil
	}

	g.recordAggregate(ctx, in, cls.DelegationScore, resp.AIInvolvement, false)
	g.submitRisk(in, cls, policy, history, inputTrace, outputTrace)

	outcome := "answered"
	if resp.Cached {
		outcome = "cached"
	}
	if g.c.Metrics != nil {
		g.c.Metrics.RecordInteraction(string(in.Mode), outcome)
	}

	res := &Result{
		Message:        resp.Text,
		AgentUsed:      resp.AgentUsed,
		CognitiveState: cls.CognitiveState,
		AIInvolvement:  resp.AIInvolvement,
		Cached:         resp.Cached,
	}
	if inputTrace != nil {
		res.InputTraceID = inputTrace.ID
	}
	if outputTrace != nil {
		res.OutputTraceID = outputTrace.ID
	}
	return res, nil
}

// blocked records the vetoed exchange and builds the redirection result.
func (g *Gateway) blocked(ctx context.Context, in *Interaction, ex recorder.Exchange, cls *classifier.Classification, policy *governance.Policy, history []*trace.CognitiveTrace, decision *governance.Decision) *Result {
	inputTrace := g.recordInput(ctx, in, ex, cls, true)

	if g.c.Metrics != nil {
		g.c.Metrics.RecordBlock(string(decision.Reason))
		g.c.Metrics.RecordInteraction(string(in.Mode), "blocked")
	}

	g.recordAggregate(ctx, in, cls.DelegationScore, 0, true)
	g.submitRisk(in, cls, policy, history, inputTrace, nil)

	res := &Result{
		Blocked:        true,
		Reason:         decision.Reason,
		Message:        decision.PedagogicalMessage,
		CognitiveState: cls.CognitiveState,
	}
	if inputTrace != nil {
		res.InputTraceID = inputTrace.ID
	}
	return res
}

// recordInput persists the prompt trace, annotated with the mode and, for
// vetoed exchanges, the blocked flag. Failures are logged only.
func (g *Gateway) recordInput(ctx context.Context, in *Interaction, ex recorder.Exchange, cls *classifier.Classification, blocked bool) *trace.CognitiveTrace {
	annotations := make(map[string]string, len(in.Context)+2)
	for k, v := range in.Context {
		annotations[k] = v
	}
	annotations[ContextKeyMode] = string(in.Mode)
	if blocked {
		annotations[trace.ContextKeyBlocked] = "true"
	}

	t, err := g.c.Recorder.RecordInput(ctx, ex, in.Prompt, cls.CognitiveState, in.Justification, annotations)
	if err != nil {
		g.logger.Error("failed to record prompt trace", "session_id", in.SessionID, "error", err)
		return nil
	}
	return t
}

// submitRisk hands the completed exchange to the async analyzer with a
// sequence view that already includes the new traces.
func (g *Gateway) submitRisk(in *Interaction, cls *classifier.Classification, policy *governance.Policy, history []*trace.CognitiveTrace, inputTrace, outputTrace *trace.CognitiveTrace) {
	if g.c.RiskPool == nil || inputTrace == nil {
		return
	}

	full := make([]*trace.CognitiveTrace, 0, len(history)+2)
	full = append(full, history...)
	full = append(full, inputTrace)
	if outputTrace != nil {
		full = append(full, outputTrace)
	}

	riskIn := &risk.Input{
		InputTrace:     inputTrace,
		OutputTrace:    outputTrace,
		Classification: cls,
		Sequence:       trace.BuildSequence(in.SessionID, full),
		Policy:         policy,
	}

	if g.c.Aggregates != nil {
		snap, err := g.c.Aggregates.Get(context.Background(), in.LearnerID, in.ActivityID)
		if err == nil {
			riskIn.Aggregate = snap
		}
	}

	g.c.RiskPool.Submit(riskIn)
}

// recordAggregate folds the exchange into the learner's usage aggregate.
// Failures are logged only.
func (g *Gateway) recordAggregate(ctx context.Context, in *Interaction, delegation, involvement float64, blocked bool) {
	if g.c.Aggregates == nil {
		return
	}

	err := g.c.Aggregates.Record(ctx, aggregate.Sample{
		LearnerID:   in.LearnerID,
		ActivityID:  in.ActivityID,
		Delegation:  delegation,
		Involvement: involvement,
		Blocked:     blocked,
	})
	if err != nil {
		g.logger.Warn("failed to update usage aggregate", "learner_id", in.LearnerID, "error", err)
	}
}

// observeCache feeds the cache metrics after a routed (non-blocked) exchange.
func (g *Gateway) observeCache(hit bool) {
	if g.c.Metrics == nil || g.c.Cache == nil {
		return
	}
	if hit {
		g.c.Metrics.RecordCacheHit()
	} else {
		g.c.Metrics.RecordCacheMiss()
	}
	g.c.Metrics.UpdateCacheSize(g.c.Cache.Size())
}

// sessionToken returns the cache isolation token for the interaction.
func (g *Gateway) sessionToken(in *Interaction) string {
	if in.SessionToken != "" {
		return in.SessionToken
	}
	return in.SessionID
}
