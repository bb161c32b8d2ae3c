package openrouter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Ketaiwk/10xcards/internal/config"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/sashabaranov/go-openai"
)

const (
	// ProviderName identifies OpenRouter in errors and logs.
	ProviderName = "openrouter"

	// DefaultModel is used when no model is configured.
	DefaultModel = "openai/gpt-4o-mini"

	// DefaultBaseURL is the OpenRouter OpenAI-compatible API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 30 * time.Second

	referer = "https://10xcards.com"
	title   = "10xCards"
)

// Generator implements generation.Generator against the OpenRouter chat
// completions API.
type Generator struct {
	client   *openai.Client
	language string
	logger   *slog.Logger

	mu    sync.RWMutex
	model string
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates an OpenRouter generator from the LLM configuration.
func NewGenerator(cfg config.LLMConfig, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("%w: openrouter api key is required", generation.ErrInvalidConfig)
	}

	baseURL := cfg.OpenRouterURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.OpenRouterAPIKey)
	clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	clientCfg.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{next: http.DefaultTransport},
	}

	return &Generator{
		client:   openai.NewClientWithConfig(clientCfg),
		language: cfg.CardLanguage,
		model:    model,
		logger:   logger.With(slog.String("component", "openrouter_generator")),
	}, nil
}

// headerTransport adds the attribution headers OpenRouter expects.
type headerTransport struct {
	next http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("HTTP-Referer", referer)
	r.Header.Set("X-Title", title)
	return t.next.RoundTrip(r)
}

// Model implements generation.Generator.
func (g *Generator) Model() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model
}

// SetModel implements generation.Generator.
func (g *Generator) SetModel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: model name must not be empty", generation.ErrInvalidConfig)
	}
	g.mu.Lock()
	g.model = name
	g.mu.Unlock()
	g.logger.Info("default model changed", slog.String("model", name))
	return nil
}

// GenerateCard implements generation.Generator.
func (g *Generator) GenerateCard(ctx context.Context, req generation.Request) (domain.GeneratedCard, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	params, err := req.Options.Resolve(g.Model())
	if err != nil {
		return domain.GeneratedCard{}, withProvider(err)
	}
	system, err := generation.BuildSystemPrompt(g.language, req.Existing)
	if err != nil {
		return domain.GeneratedCard{}, generation.NewProviderError(ProviderName,
			domain.KindProviderGeneric, "failed to build prompt", err)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: params.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: req.SourceText},
		},
		Temperature:      params.Temperature,
		MaxTokens:        params.MaxTokens,
		FrequencyPenalty: params.FrequencyPenalty,
		PresencePenalty:  params.PresencePenalty,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		perr := classify(err)
		log.Warn("openrouter request failed",
			slog.String("model", params.Model),
			slog.String("error_kind", string(perr.Kind)),
			slog.Int("status", perr.StatusCode))
		return domain.GeneratedCard{}, perr
	}

	if len(resp.Choices) == 0 {
		return domain.GeneratedCard{}, generation.NewProviderError(ProviderName,
			domain.KindProviderValidation, "response has no choices", nil)
	}

	log.Debug("openrouter response received",
		slog.String("model", params.Model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens))

	return generation.ParseCard(ProviderName, resp.Choices[0].Message.Content)
}

// ListModels implements generation.Generator.
func (g *Generator) ListModels(ctx context.Context) ([]generation.Model, error) {
	list, err := g.client.ListModels(ctx)
	if err != nil {
		return nil, classify(err)
	}
	models := make([]generation.Model, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, generation.Model{ID: m.ID, Name: m.ID, OwnedBy: m.OwnedBy})
	}
	return models, nil
}

func withProvider(err error) error {
	if pe, ok := generation.AsProviderError(err); ok && pe.Provider == "" {
		pe.Provider = ProviderName
	}
	return err
}

// classify converts a go-openai error into a ProviderError.
func classify(err error) *generation.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe := generation.NewProviderError(ProviderName, generation.KindForStatus(apiErr.HTTPStatusCode),
			apiErr.Message, err)
		pe.StatusCode = apiErr.HTTPStatusCode
		return pe
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		pe := generation.NewProviderError(ProviderName, generation.KindForStatus(reqErr.HTTPStatusCode),
			http.StatusText(reqErr.HTTPStatusCode), err)
		pe.StatusCode = reqErr.HTTPStatusCode
		return pe
	}
	if generation.IsTransportError(err) || errors.Is(err, context.Canceled) {
		return generation.NewProviderError(ProviderName, domain.KindProviderNetwork, "request failed", err)
	}
	return generation.NewProviderError(ProviderName, domain.KindProviderGeneric, "unexpected error", err)
}
