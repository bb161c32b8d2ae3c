package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Ketaiwk/10xcards/internal/domain"
)

// ErrInvalidConfig is returned when the generator configuration is invalid.
var ErrInvalidConfig = errors.New("invalid generator configuration")

// ProviderError is the single error type returned by generators. Kind is one
// of the domain provider kinds.
type ProviderError struct {
	Kind       domain.Kind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error { return e.Err }

// ErrorKind lets domain.KindOf classify provider errors.
func (e *ProviderError) ErrorKind() domain.Kind { return e.Kind }

// NewProviderError creates a ProviderError.
func NewProviderError(provider string, kind domain.Kind, message string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Provider: provider, Message: message, Err: err}
}

// KindForStatus maps an HTTP status returned by a provider to an error kind.
func KindForStatus(status int) domain.Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.KindProviderAuth
	case http.StatusTooManyRequests:
		return domain.KindProviderRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.KindProviderValidation
	}
	return domain.KindProviderGeneric
}

// IsTransportError reports whether err is a network failure or a timeout
// rather than a response from the provider.
func IsTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// AsProviderError returns the ProviderError in err's chain, if any.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// UserMessage returns a client-facing message for a provider error kind.
func UserMessage(kind domain.Kind) string {
	switch kind {
	case domain.KindProviderAuth:
		return "AI provider rejected the API credentials"
	case domain.KindProviderRateLimit:
		return "AI provider rate limit reached, try again later"
	case domain.KindProviderValidation:
		return "AI provider returned an invalid flashcard"
	case domain.KindProviderNetwork:
		return "Could not reach the AI provider"
	case domain.KindProviderGeneric:
		return "AI provider error"
	}
	return "Generation failed"
}
