package generation

import (
	"context"
	"fmt"

	"github.com/Ketaiwk/10xcards/internal/domain"
)

// Default sampling parameters for one card.
const (
	DefaultTemperature      float32 = 0.7
	DefaultMaxTokens                = 300
	DefaultFrequencyPenalty float32 = 0.3
	DefaultPresencePenalty  float32 = 0.3
)

// Generator defines the interface for generating flashcards from text.
// It is the boundary between the application core and external LLM services.
type Generator interface {
	// GenerateCard makes exactly one provider call and returns one validated
	// card. Every failure is a *ProviderError.
	GenerateCard(ctx context.Context, req Request) (domain.GeneratedCard, error)

	// ListModels returns the models offered by the provider.
	ListModels(ctx context.Context) ([]Model, error)

	// SetModel overrides the default model. An empty name returns ErrInvalidConfig.
	SetModel(name string) error

	// Model returns the current default model.
	Model() string
}

// Request is the input of a single generation call.
type Request struct {
	SourceText string
	// Existing cards are listed in the prompt so the provider avoids them.
	Existing []domain.GeneratedCard
	Options  Options
}

// Options override the default sampling parameters. Nil fields keep the
// defaults; an empty Model uses the generator's current model.
type Options struct {
	Model            string   `json:"model,omitempty"`
	Temperature      *float32 `json:"temperature,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	FrequencyPenalty *float32 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float32 `json:"presence_penalty,omitempty"`
}

// Params are fully resolved sampling parameters.
type Params struct {
	Model            string
	Temperature      float32
	MaxTokens        int
	FrequencyPenalty float32
	PresencePenalty  float32
}

// Resolve applies defaults and checks ranges. Out-of-range values yield a
// ProviderValidation error.
func (o Options) Resolve(defaultModel string) (Params, error) {
	p := Params{
		Model:            defaultModel,
		Temperature:      DefaultTemperature,
		MaxTokens:        DefaultMaxTokens,
		FrequencyPenalty: DefaultFrequencyPenalty,
		PresencePenalty:  DefaultPresencePenalty,
	}
	if o.Model != "" {
		p.Model = o.Model
	}
	if o.Temperature != nil {
		p.Temperature = *o.Temperature
	}
	if o.MaxTokens != nil {
		p.MaxTokens = *o.MaxTokens
	}
	if o.FrequencyPenalty != nil {
		p.FrequencyPenalty = *o.FrequencyPenalty
	}
	if o.PresencePenalty != nil {
		p.PresencePenalty = *o.PresencePenalty
	}

	switch {
	case p.Temperature < 0 || p.Temperature > 2:
		return p, invalidOption("temperature must be between 0 and 2, got %v", p.Temperature)
	case p.MaxTokens < 1 || p.MaxTokens > 4000:
		return p, invalidOption("max_tokens must be between 1 and 4000, got %d", p.MaxTokens)
	case p.FrequencyPenalty < -2 || p.FrequencyPenalty > 2:
		return p, invalidOption("frequency_penalty must be between -2 and 2, got %v", p.FrequencyPenalty)
	case p.PresencePenalty < -2 || p.PresencePenalty > 2:
		return p, invalidOption("presence_penalty must be between -2 and 2, got %v", p.PresencePenalty)
	case p.Model == "":
		return p, invalidOption("model must not be empty")
	}
	return p, nil
}

func invalidOption(format string, args ...any) error {
	return &ProviderError{Kind: domain.KindProviderValidation, Message: fmt.Sprintf(format, args...)}
}

// Model describes a model offered by a provider.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	OwnedBy     string `json:"owned_by,omitempty"`
}
