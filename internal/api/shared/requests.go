package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps request bodies. Source texts are at most 10000
// characters, so 1 MiB leaves ample room.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON for a request without a body.
var ErrEmptyBody = domain.NewValidationError("", "request body is required", nil)

// Validate is the shared validator. Field names in its errors use the JSON
// tag of the field.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into the given struct. Unknown fields
// are rejected. Decoding failures are validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := r.Body
	if w != nil {
		body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return domain.NewValidationError("", "invalid request body", err)
	}
	return nil
}

// ValidateRequest validates the given struct. Types with their own
// Validate method are validated by it instead of by tags.
func ValidateRequest(v interface{}) error {
	if validatable, ok := v.(interface{ Validate() error }); ok {
		return validatable.Validate()
	}
	return Validate.Struct(v)
}
