package backend

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI-compatible backend adapter.
type OpenAIConfig struct {
	// APIKey authenticates against the endpoint. Required.
	APIKey string

	// BaseURL overrides the API endpoint, allowing any OpenAI-compatible
	// server (vLLM, llama.cpp, LiteLLM). Empty means the official API.
	BaseURL string

	// Model is the model identifier sent with every request.
	// Default: "gpt-4o-mini"
	Model string
}

// OpenAIBackend implements LanguageBackend against any OpenAI-compatible
// chat-completion endpoint.
type OpenAIBackend struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIBackend creates the adapter. The API key must be non-empty.
func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai backend: api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: slog.Default().With("component", "backend.openai"),
	}, nil
}

// Name returns the backend name for logging and metrics.
func (b *OpenAIBackend) Name() string { return "openai" }

// Complete sends the conversation and returns the first choice's content.
// Cancellation and deadlines propagate through ctx into the HTTP call.
func (b *OpenAIBackend) Complete(ctx context.Context, turns []Turn, params SamplingParams) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    b.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(turns)),
	}

	for _, turn := range turns {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	if params.Temperature > 0 {
		req.Temperature = params.Temperature
	}
	if params.MaxTokens > 0 {
		req.MaxCompletionTokens = params.MaxTokens
	}
	if params.TopP > 0 {
		req.TopP = params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", NewGenerationError(b.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", NewGenerationError(b.Name(), fmt.Errorf("no choices returned"))
	}

	b.logger.Debug("completion received",
		"model", b.model,
		"finish_reason", resp.Choices[0].FinishReason,
	)
	return resp.Choices[0].Message.Content, nil
}
