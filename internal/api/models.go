package api

import (
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/service"
	"github.com/Ketaiwk/10xcards/internal/service/auth"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name"     validate:"required,min=2,max=255"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest defines the payload for starting a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest defines the payload for completing a password reset.
type ResetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AuthResponse defines the successful response for login and refresh.
type AuthResponse struct {
	// AccessToken is the JWT used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is used to obtain a new token pair
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// CreateSetRequest defines the payload for creating a flashcard set.
type CreateSetRequest struct {
	Name            string  `json:"name"              validate:"required,max=255"`
	Description     *string `json:"description"       validate:"omitempty,max=1000"`
	SourceText      *string `json:"source_text"       validate:"omitempty,min=1000,max=10000"`
	GenerateAICards bool    `json:"generate_ai_cards"`
	CardCount       int     `json:"card_count"        validate:"omitempty,min=1,max=30"`
}

func (r CreateSetRequest) toInput() service.CreateSetInput {
	return service.CreateSetInput{
		Name:            r.Name,
		Description:     r.Description,
		SourceText:      r.SourceText,
		GenerateAICards: r.GenerateAICards,
		CardCount:       r.CardCount,
	}
}

// UpdateSetRequest defines the payload for a partial set update.
type UpdateSetRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	IsDeleted   *bool   `json:"is_deleted"`
}

func (r UpdateSetRequest) toInput() service.UpdateSetInput {
	return service.UpdateSetInput{Name: r.Name, Description: r.Description, IsDeleted: r.IsDeleted}
}

// CreateFlashcardRequest defines the payload for adding a card to a set.
// CreationType defaults to manual.
type CreateFlashcardRequest struct {
	Question     string `json:"question"      validate:"required,max=200"`
	Answer       string `json:"answer"        validate:"required,max=500"`
	CreationType string `json:"creation_type" validate:"omitempty,oneof=manual ai_generated ai_edited"`
}

func (r CreateFlashcardRequest) toInput() service.CreateFlashcardInput {
	ct := domain.CreationTypeManual
	if r.CreationType != "" {
		ct = domain.CreationType(r.CreationType)
	}
	return service.CreateFlashcardInput{Question: r.Question, Answer: r.Answer, CreationType: ct}
}

// UpdateFlashcardRequest defines the payload for a partial card update.
type UpdateFlashcardRequest struct {
	Question     *string `json:"question"      validate:"omitempty,min=1,max=200"`
	Answer       *string `json:"answer"        validate:"omitempty,min=1,max=500"`
	IsDeleted    *bool   `json:"is_deleted"`
	CreationType *string `json:"creation_type" validate:"omitempty,oneof=manual ai_generated ai_edited"`
}

func (r UpdateFlashcardRequest) toInput() service.UpdateFlashcardInput {
	in := service.UpdateFlashcardInput{Question: r.Question, Answer: r.Answer, IsDeleted: r.IsDeleted}
	if r.CreationType != nil {
		ct := domain.CreationType(*r.CreationType)
		in.CreationType = &ct
	}
	return in
}

// GenerationRequest defines the payload of the streaming generation endpoint.
type GenerationRequest struct {
	SourceText       string   `json:"source_text"       validate:"required"`
	Count            int      `json:"count"             validate:"omitempty,min=1,max=30"`
	Model            string   `json:"model"             validate:"omitempty,max=200"`
	Temperature      *float32 `json:"temperature"`
	MaxTokens        *int     `json:"max_tokens"`
	FrequencyPenalty *float32 `json:"frequency_penalty"`
	PresencePenalty  *float32 `json:"presence_penalty"`
}

// DefaultGenerationCount is used when a generation request omits count.
const DefaultGenerationCount = 10

func (r GenerationRequest) toRunRequest() generation.RunRequest {
	count := r.Count
	if count == 0 {
		count = DefaultGenerationCount
	}
	return generation.RunRequest{
		SourceText: r.SourceText,
		Target:     count,
		Options: generation.Options{
			Model:            r.Model,
			Temperature:      r.Temperature,
			MaxTokens:        r.MaxTokens,
			FrequencyPenalty: r.FrequencyPenalty,
			PresencePenalty:  r.PresencePenalty,
		},
	}
}

// ModelsResponse lists the models offered by the configured provider.
type ModelsResponse struct {
	Default string             `json:"default"`
	Models  []generation.Model `json:"models"`
}

func newAuthResponse(p *auth.TokenPair) AuthResponse {
	return AuthResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    p.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
