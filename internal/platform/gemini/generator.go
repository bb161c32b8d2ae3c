package gemini

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
	"google.golang.org/genai"
)

const (
	// ProviderName identifies Gemini in errors and logs.
	ProviderName = "gemini"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.0-flash"
)

// Generator implements generation.Generator using Google's Gemini API.
type Generator struct {
	client   *genai.Client
	language string
	logger   *slog.Logger

	mu    sync.RWMutex
	model string
}

var _ generation.Generator = (*Generator)(nil)

// Option configures a Generator.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at a different API root.
func WithBaseURL(url string) Option {
	return func(c *genai.ClientConfig) { c.HTTPOptions.BaseURL = url }
}

// NewGenerator creates a Gemini generator from the LLM configuration.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger, opts ...Option) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key cannot be empty", generation.ErrInvalidConfig)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(clientConfig)
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Generator{
		client:   client,
		language: cfg.CardLanguage,
		model:    model,
		logger:   logger.With(slog.String("component", "gemini_generator")),
	}, nil
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
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	g.mu.Lock()
	g.model = name
	g.mu.Unlock()
	return nil
}

// GenerateCard implements generation.Generator.
func (g *Generator) GenerateCard(ctx context.Context, req generation.Request) (domain.GeneratedCard, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	params, err := req.Options.Resolve(g.Model())
	if err != nil {
		if pe, ok := generation.AsProviderError(err); ok {
			pe.Provider = ProviderName
		}
		return domain.GeneratedCard{}, err
	}
	system, err := generation.BuildSystemPrompt(g.language, req.Existing)
	if err != nil {
		return domain.GeneratedCard{}, generation.NewProviderError(ProviderName,
			domain.KindProviderGeneric, "failed to build prompt", err)
	}

	resp, err := g.client.Models.GenerateContent(ctx, params.Model,
		[]*genai.Content{genai.NewContentFromText(req.SourceText, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       genai.Ptr(params.Temperature),
			MaxOutputTokens:   int32(params.MaxTokens),
			FrequencyPenalty:  genai.Ptr(params.FrequencyPenalty),
			PresencePenalty:   genai.Ptr(params.PresencePenalty),
			ResponseMIMEType:  "application/json",
		})
	if err != nil {
		perr := classify(err)
		log.Warn("gemini request failed",
			slog.String("model", params.Model),
			slog.String("error_kind", string(perr.Kind)),
			slog.Int("status", perr.StatusCode))
		return domain.GeneratedCard{}, perr
	}

	text, err := responseText(resp)
	if err != nil {
		return domain.GeneratedCard{}, err
	}
	return generation.ParseCard(ProviderName, text)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		msg := "response has no candidates"
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			msg = "content blocked: " + string(resp.PromptFeedback.BlockReason)
		}
		return "", generation.NewProviderError(ProviderName, domain.KindProviderValidation, msg, nil)
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", generation.NewProviderError(ProviderName, domain.KindProviderValidation,
			"candidate has no content, finish reason "+string(cand.FinishReason), nil)
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// ListModels implements generation.Generator.
func (g *Generator) ListModels(ctx context.Context) ([]generation.Model, error) {
	page, err := g.client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 100})
	if err != nil {
		return nil, classify(err)
	}
	models := make([]generation.Model, 0, len(page.Items))
	for _, m := range page.Items {
		models = append(models, generation.Model{
			ID:          strings.TrimPrefix(m.Name, "models/"),
			Name:        m.DisplayName,
			Description: m.Description,
			OwnedBy:     "google",
		})
	}
	return models, nil
}

// classify converts a genai error into a ProviderError.
func classify(err error) *generation.ProviderError {
	code := 0
	message := ""
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, message = apiErr.Code, apiErr.Message
	case errors.As(err, &apiErrPtr):
		code, message = apiErrPtr.Code, apiErrPtr.Message
	}
	if code != 0 {
		pe := generation.NewProviderError(ProviderName, generation.KindForStatus(code), message, err)
		pe.StatusCode = code
		return pe
	}
	if generation.IsTransportError(err) || errors.Is(err, context.Canceled) {
		return generation.NewProviderError(ProviderName, domain.KindProviderNetwork, "request failed", err)
	}
	return generation.NewProviderError(ProviderName, domain.KindProviderGeneric, "unexpected error", err)
}
