package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Ketaiwk/10xcards/internal/api/shared"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/go-playground/validator/v10"
)

// Fixed client-facing messages.
const (
	MsgSetNotFound       = "Flashcard set not found"
	MsgFlashcardNotFound = "Flashcard not found"
	MsgLimitExceeded     = "Flashcard limit exceeded (30 per set)"
	MsgValidation        = "Validation error"
	MsgInternal          = "Internal server error"
	MsgEmailExists       = "Email already exists"
	MsgUnauthorized      = "Unauthorized"
)

// MapErrorToStatusCode maps an error to an HTTP status code by its kind.
// Errors without a kind are internal server errors.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}

	switch kind := domain.KindOf(err); {
	case kind == domain.KindValidation:
		return http.StatusBadRequest
	case kind == domain.KindUnauthorized:
		return http.StatusUnauthorized
	case kind == domain.KindNotFound:
		return http.StatusNotFound
	case kind == domain.KindLimitExceeded, kind == domain.KindConflict:
		return http.StatusConflict
	case kind.IsProvider():
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message that can be shown to the client.
// Internal details never leak; only the fixed texts and the messages of
// validation and auth errors, which are written for users, are returned.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgInternal
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return SanitizeValidationError(verrs)
	}

	switch kind := domain.KindOf(err); {
	case kind == domain.KindNotFound:
		switch {
		case errors.Is(err, store.ErrFlashcardSetNotFound):
			return MsgSetNotFound
		case errors.Is(err, store.ErrFlashcardNotFound):
			return MsgFlashcardNotFound
		case errors.Is(err, store.ErrUserNotFound):
			return "User not found"
		}
		return "Resource not found"
	case kind == domain.KindLimitExceeded:
		return MsgLimitExceeded
	case kind == domain.KindConflict:
		if errors.Is(err, store.ErrEmailExists) {
			return MsgEmailExists
		}
		return "Resource already exists"
	case kind == domain.KindValidation:
		return validationMessage(err)
	case kind == domain.KindUnauthorized:
		var de *domain.Error
		if errors.As(err, &de) && de.Message != "" {
			return capitalize(de.Message)
		}
		return MsgUnauthorized
	case kind.IsProvider():
		return generation.UserMessage(kind)
	default:
		return MsgInternal
	}
}

// validationMessage renders the outermost domain validation error as
// "field: message" without its wrapped cause.
func validationMessage(err error) string {
	var de *domain.Error
	if !errors.As(err, &de) || de.Message == "" {
		return MsgValidation
	}
	if de.Field != "" {
		return de.Field + ": " + de.Message
	}
	return capitalize(de.Message)
}

// SanitizeValidationError turns validator errors into a short message that
// names the first failing field.
func SanitizeValidationError(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return MsgValidation
	}
	fe := verrs[0]
	return fmt.Sprintf("%s: %s", fe.Field(), validationTagMessage(fe))
}

func validationTagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email format"
	case "min", "gte":
		if fe.Kind().String() == "string" {
			return "must be at least " + fe.Param() + " characters long"
		}
		return "must be at least " + fe.Param()
	case "max", "lte":
		if fe.Kind().String() == "string" {
			return "must be at most " + fe.Param() + " characters long"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uuid":
		return "has invalid format"
	default:
		return "is invalid"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// HandleAPIError writes the error response for err. A non-empty
// fallbackMessage replaces the generic text of internal errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
