package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Ketaiwk/10xcards/internal/api/shared"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", nil)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", err)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter. A missing parameter
// yields zero, which the services replace with their default.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", err)
	}
	return n, nil
}

// requireUserID returns the authenticated user's ID. It writes a 401 and
// returns false when the request carries none.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// requireUserAndPathIDs combines requireUserID with parsing of the named
// path parameters. It writes the error response itself on failure.
func requireUserAndPathIDs(w http.ResponseWriter, r *http.Request, params ...string) (uuid.UUID, []uuid.UUID, bool) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}

	ids := make([]uuid.UUID, 0, len(params))
	for _, name := range params {
		id, err := getPathUUID(r, name)
		if err != nil {
			logger.FromContext(r.Context()).Warn("invalid "+name,
				slog.String("param_name", name),
				slog.String("value", chi.URLParam(r, name)))
			HandleAPIError(w, r, err, "")
			return uuid.Nil, nil, false
		}
		ids = append(ids, id)
	}
	return userID, ids, true
}

// decodeAndValidate decodes the request body into req and validates it.
// It writes a 400 and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}
