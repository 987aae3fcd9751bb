package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"cognitia-edu/minerva/pkg/backend"
	"cognitia-edu/minerva/pkg/trace"
)

// Classifier detects request type, cognitive state, and delegation intent for
// a learner prompt. It never fails: every error path degrades to the
// conservative fallback classification.
type Classifier struct {
	backend  backend.LanguageBackend
	config   *Config
	logger   *slog.Logger
	patterns []string // normalized delegation patterns
}

// New creates a classifier. A nil config applies defaults.
func New(lb backend.LanguageBackend, config *Config, logger *slog.Logger) *Classifier {
	if config == nil {
		config = DefaultConfig()
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = 6
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = slog.Default().With("component", "classifier")
	}

	patterns := make([]string, 0, len(config.DelegationPatterns))
	for _, p := range config.DelegationPatterns {
		patterns = append(patterns, normalizePrompt(p))
	}

	return &Classifier{
		backend:  lb,
		config:   config,
		logger:   logger,
		patterns: patterns,
	}
}

// Classify runs the layered heuristic:
//
//  1. canonical delegation phrasings force a delegation classification;
//  2. otherwise the language backend classifies with a constrained prompt
//     under the configured timeout;
//  3. any backend failure or timeout falls back to the conservative
//     implementation-help classification.
func (c *Classifier) Classify(ctx context.Context, prompt string, history []*trace.CognitiveTrace) *Classification {
	normalized := normalizePrompt(prompt)

	if pattern, ok := matchesDelegationPattern(normalized, c.patterns); ok {
		c.logger.Debug("delegation pattern matched", "pattern", pattern)
		return &Classification{
			RequestType:            RequestDelegation,
			CognitiveState:         trace.StateImplementation,
			DelegationScore:        1.0,
			SuggestedAIInvolvement: 1.0,
			Source:                 SourcePattern,
		}
	}

	cls, err := c.classifyWithBackend(ctx, prompt, history)
	if err != nil {
		c.logger.Warn("backend classification failed, using fallback",
			"error", err,
		)
		return c.fallback(normalized)
	}
	return cls
}

// backendAnswer is the structured answer the classification prompt requests.
type backendAnswer struct {
	RequestType     string  `json:"request_type"`
	CognitiveState  string  `json:"cognitive_state"`
	DelegationScore float64 `json:"delegation_score"`
	AIInvolvement   float64 `json:"ai_involvement"`
	Justification   string  `json:"justification"`
}

// classifyWithBackend asks the language backend for a structured
// classification under the configured timeout.
func (c *Classifier) classifyWithBackend(ctx context.Context, prompt string, history []*trace.CognitiveTrace) (*Classification, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	turns := []backend.Turn{
		{Role: backend.RoleSystem, Content: classificationInstruction},
		{Role: backend.RoleUser, Content: c.buildClassificationInput(prompt, history)},
	}

	raw, err := c.backend.Complete(callCtx, turns, backend.SamplingParams{
		Temperature: 0,
		MaxTokens:   256,
	})
	if err != nil {
		return nil, err
	}

	var answer backendAnswer
	if err := json.Unmarshal([]byte(extractJSON(raw)), &answer); err != nil {
		return nil, fmt.Errorf("unparseable classification answer: %w", err)
	}

	cls := &Classification{
		RequestType:            parseRequestType(answer.RequestType),
		CognitiveState:         parseCognitiveState(answer.CognitiveState),
		DelegationScore:        clamp01(answer.DelegationScore),
		SuggestedAIInvolvement: clamp01(answer.AIInvolvement),
		Source:                 SourceBackend,
		Justification:          answer.Justification,
	}
	return cls, nil
}

// classificationInstruction constrains the backend to a machine-parseable
// answer. Kept terse: longer instructions measurably degrade adherence on
// small local models.
const classificationInstruction = `You classify a learner's message in a tutoring session.
Answer with ONLY a JSON object, no prose:
{"request_type":"conceptual-query|implementation-help|delegation|validation|justification|other",
"cognitive_state":"exploration|planning|implementation|validation|reflection",
"delegation_score":0.0,"ai_involvement":0.0,"justification":"one short sentence"}
delegation_score: 1.0 means the learner wants the full solution done for them.
ai_involvement: how much AI help the request implies, 0.0 to 1.0.`

// buildClassificationInput renders the prompt plus bounded recent history.
func (c *Classifier) buildClassificationInput(prompt string, history []*trace.CognitiveTrace) string {
	var sb strings.Builder

	if len(history) > 0 {
		limit := c.config.HistoryLimit
		if len(history) > limit {
			history = history[len(history)-limit:]
		}
		sb.WriteString("Recent exchange:\n")
		for _, t := range history {
			role := "learner"
			if t.Kind == trace.KindSystemResponse {
				role = "tutor"
			}
			fmt.Fprintf(&sb, "- %s: %s\n", role, truncate(t.Content, 200))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Current message: %s", prompt)
	return sb.String()
}

// fallback is the most conservative classification: implementation-help with
// mid-range scores, refined slightly by cheap keyword heuristics.
func (c *Classifier) fallback(normalizedPrompt string) *Classification {
	cls := &Classification{
		RequestType:            RequestImplementationHelp,
		CognitiveState:         trace.StateImplementation,
		DelegationScore:        0.5,
		SuggestedAIInvolvement: 0.5,
		Source:                 SourceFallback,
	}

	switch {
	case strings.HasPrefix(normalizedPrompt, "what is") ||
		strings.HasPrefix(normalizedPrompt, "what are") ||
		strings.HasPrefix(normalizedPrompt, "why "):
		cls.RequestType = RequestConceptualQuery
		cls.CognitiveState = trace.StateExploration
		cls.DelegationScore = 0.2
		cls.SuggestedAIInvolvement = 0.3
	case strings.Contains(normalizedPrompt, "is this correct") ||
		strings.Contains(normalizedPrompt, "did i do this right"):
		cls.RequestType = RequestValidation
		cls.CognitiveState = trace.StateValidation
		cls.DelegationScore = 0.3
		cls.SuggestedAIInvolvement = 0.4
	case strings.Contains(normalizedPrompt, "because") ||
		strings.Contains(normalizedPrompt, "my reasoning"):
		cls.RequestType = RequestJustification
		cls.CognitiveState = trace.StateReflection
		cls.DelegationScore = 0.2
		cls.SuggestedAIInvolvement = 0.3
	}

	return cls
}

// extractJSON returns the first {...} block in raw, tolerating models that
// wrap the answer in markdown fences or prose.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func parseRequestType(s string) RequestType {
	switch RequestType(strings.TrimSpace(strings.ToLower(s))) {
	case RequestConceptualQuery, RequestImplementationHelp, RequestDelegation,
		RequestValidation, RequestJustification:
		return RequestType(strings.TrimSpace(strings.ToLower(s)))
	default:
		return RequestOther
	}
}

func parseCognitiveState(s string) trace.CognitiveState {
	switch trace.CognitiveState(strings.TrimSpace(strings.ToLower(s))) {
	case trace.StateExploration, trace.StatePlanning, trace.StateImplementation,
		trace.StateValidation, trace.StateReflection:
		return trace.CognitiveState(strings.TrimSpace(strings.ToLower(s)))
	default:
		return trace.StateImplementation
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
