package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cognitia-edu/minerva/pkg/backend"
	"cognitia-edu/minerva/pkg/cache"
	"cognitia-edu/minerva/pkg/classifier"
	"cognitia-edu/minerva/pkg/trace"
)

// RouteRequest is the router's input: the learner's prompt plus everything
// needed to pick a strategy and key the cache.
type RouteRequest struct {
	// SessionToken isolates cache entries between sessions. Required when a
	// cache is configured.
	SessionToken string

	// Mode selects the strategy family.
	Mode Mode

	// Prompt is the learner's message.
	Prompt string

	// Context is the interaction's contextual metadata (activity, exercise).
	// It participates in the cache key.
	Context map[string]string

	// Classification is the classifier's output for the prompt.
	Classification *classifier.Classification

	// History is the bounded recent session history, oldest first.
	History []*trace.CognitiveTrace

	// Role is the professional role for simulator mode.
	Role string
}

// RouterConfig configures the strategy router.
type RouterConfig struct {
	// Cache enables read-through response caching. Nil disables caching.
	Cache *cache.Cache

	// CacheTTL overrides the cache's default TTL for router writes.
	// 0 uses the cache default.
	CacheTTL time.Duration

	// GenerationTimeout bounds a single strategy generation call. Expiry
	// surfaces as a generation failure to the caller. 0 imposes no
	// router-level deadline beyond the caller's context.
	GenerationTimeout time.Duration

	// Logger receives routing decisions. Defaults to slog.Default.
	Logger *slog.Logger
}

// Router selects and runs the response strategy for an interaction. The
// strategy table is fixed at construction; selection depends only on the
// session mode and the classified cognitive state, so identical inputs route
// identically.
type Router struct {
	strategies map[Kind]Strategy
	cache      *cache.Cache
	cacheTTL   time.Duration
	genTimeout time.Duration
	logger     *slog.Logger
}

// NewRouter builds a router over the full strategy set, all backed by lb.
func NewRouter(lb backend.LanguageBackend, cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	strategies := map[Kind]Strategy{
		KindSocratic:         NewSocraticStrategy(lb),
		KindExplicative:      NewExplicativeStrategy(lb),
		KindGuidedHint:       NewGuidedHintStrategy(lb),
		KindMetacognitive:    NewMetacognitiveStrategy(lb),
		KindSimulator:        NewSimulatorStrategy(lb),
		KindProcessEvaluator: NewProcessEvaluatorStrategy(lb),
	}

	return &Router{
		strategies: strategies,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		genTimeout: cfg.GenerationTimeout,
		logger:     logger.With("component", "router"),
	}
}

// SelectKind maps the session mode and classified cognitive state to a
// strategy kind. Tutor mode fans out over the cognitive phases; simulator and
// evaluator modes each map to their single strategy.
func SelectKind(mode Mode, cls *classifier.Classification) Kind {
	switch mode {
	case ModeSimulator:
		return KindSimulator
	case ModeEvaluator:
		return KindProcessEvaluator
	}

	state := trace.StateImplementation
	if cls != nil {
		state = cls.CognitiveState
	}

	switch state {
	case trace.StateExploration:
		return KindSocratic
	case trace.StatePlanning, trace.StateValidation:
		return KindExplicative
	case trace.StateReflection:
		return KindMetacognitive
	default:
		return KindGuidedHint
	}
}

// Route resolves the strategy for req, serving from the cache when possible
// and generating otherwise. Generation failures are returned to the caller;
// the router never substitutes a degraded answer.
func (r *Router) Route(ctx context.Context, req *RouteRequest) (*Response, error) {
	kind := SelectKind(req.Mode, req.Classification)
	strat, ok := r.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("router: no strategy registered for kind %q", kind)
	}

	var cacheKey string
	if r.cache != nil {
		key, err := r.cache.Key(cache.KeyMaterial{
			SessionToken: req.SessionToken,
			Mode:         string(req.Mode),
			Prompt:       req.Prompt,
			Context:      req.Context,
		})
		if err != nil {
			return nil, err
		}
		cacheKey = key

		if p, hit := r.cache.Get(cacheKey); hit {
			r.logger.Debug("cache hit", "strategy", kind)
			return &Response{
				Text:          p.Response,
				AgentUsed:     p.AgentUsed,
				AIInvolvement: p.AIInvolvement,
				Cached:        true,
			}, nil
		}
	}

	genCtx := ctx
	if r.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, r.genTimeout)
		defer cancel()
	}

	resp, err := strat.Respond(genCtx, &Request{
		Prompt:         req.Prompt,
		Classification: req.Classification,
		History:        req.History,
		HintLevel:      hintLevel(req.History),
		Role:           req.Role,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("generated response", "strategy", kind, "involvement", resp.AIInvolvement)

	if r.cache != nil {
		r.cache.Put(cacheKey, &cache.Payload{
			Response:      resp.Text,
			AgentUsed:     resp.AgentUsed,
			AIInvolvement: resp.AIInvolvement,
			GeneratedAt:   time.Now(),
		}, r.cacheTTL)
	}

	return resp, nil
}

// hintLevel derives the graduated-hint level from the session history: one
// more than the number of hints already given, capped at MaxHintLevel. Kept
// stateless so the router needs no per-session bookkeeping.
func hintLevel(history []*trace.CognitiveTrace) int {
	level := 1
	for _, t := range history {
		if t.Kind != trace.KindSystemResponse {
			continue
		}
		if strings.HasPrefix(t.Context[trace.ContextKeyAgent], string(KindGuidedHint)) {
			level++
		}
	}
	if level > MaxHintLevel {
		level = MaxHintLevel
	}
	return level
}
