package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error so that callers can react to it without
// inspecting error strings.
type Kind string

// Error kinds used across the application.
const (
	KindValidation         Kind = "validation_error"
	KindUnauthorized       Kind = "unauthorized"
	KindNotFound           Kind = "not_found"
	KindLimitExceeded      Kind = "limit_exceeded"
	KindConflict           Kind = "conflict"
	KindProviderAuth       Kind = "provider_auth_error"
	KindProviderRateLimit  Kind = "provider_rate_limit"
	KindProviderValidation Kind = "provider_validation_error"
	KindProviderNetwork    Kind = "provider_network_error"
	KindProviderGeneric    Kind = "provider_error"
	KindInternal           Kind = "internal_error"
)

// IsProvider reports whether the kind originates from the LLM provider.
func (k Kind) IsProvider() bool {
	switch k {
	case KindProviderAuth, KindProviderRateLimit, KindProviderValidation,
		KindProviderNetwork, KindProviderGeneric:
		return true
	}
	return false
}

// Error is the tagged error type of the domain. Kind is the machine-checkable
// discriminator; Field and Message carry the human readable details.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorKind returns the kind of the error.
func (e *Error) ErrorKind() Kind {
	return e.Kind
}

// Is matches another *Error of the same kind. A target without a message
// matches every error of its kind, so the kind sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	if t.Field != "" && t.Field != e.Field {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Kind sentinels. Use errors.Is(err, domain.ErrNotFound) to test for a kind.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrLimitExceeded = &Error{Kind: KindLimitExceeded}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrInternal      = &Error{Kind: KindInternal}
)

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, message string, err error) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message, Err: err}
}

// NewLimitExceededError reports that a set has no room for more cards.
func NewLimitExceededError(limit int) *Error {
	return &Error{Kind: KindLimitExceeded, Message: fmt.Sprintf("flashcard limit exceeded (%d per set)", limit)}
}

// NewNotFoundError creates a not found error for the named entity.
func NewNotFoundError(entity string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found", Err: err}
}

// kinded is satisfied by every error that carries a Kind, including
// provider errors defined outside this package.
type kinded interface {
	ErrorKind() Kind
}

// KindOf classifies any error chain. Errors without a kind are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindInternal
}
