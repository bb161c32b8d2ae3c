package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ketaiwk/10xcards/internal/api/middleware"
	"github.com/Ketaiwk/10xcards/internal/api/shared"
	"github.com/Ketaiwk/10xcards/internal/mocks"
	"github.com/Ketaiwk/10xcards/internal/service/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testToken = "test-access-token"

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// testDeps collects the collaborators of the router under test. Nil fields
// are replaced by empty mocks.
type testDeps struct {
	userID      uuid.UUID
	sets        *mocks.MockFlashcardSetService
	cards       *mocks.MockFlashcardService
	accumulator CardAccumulator
	provider    *mocks.MockAuthProvider
}

// newTestRouter mounts the handlers the way the server does.
func newTestRouter(t *testing.T, deps testDeps) http.Handler {
	t.Helper()
	if deps.userID == uuid.Nil {
		deps.userID = uuid.New()
	}
	if deps.sets == nil {
		deps.sets = &mocks.MockFlashcardSetService{}
	}
	if deps.cards == nil {
		deps.cards = &mocks.MockFlashcardService{}
	}
	if deps.provider == nil {
		deps.provider = &mocks.MockAuthProvider{}
	}
	if deps.provider.AuthenticateFn == nil {
		deps.provider.AuthenticateFn = mocks.NewMockAuthProviderForUser(deps.userID).AuthenticateFn
	}

	setHandler := NewFlashcardSetHandler(deps.sets, discardLogger)
	cardHandler := NewFlashcardHandler(deps.cards, discardLogger)
	authHandler := NewAuthHandler(deps.provider, discardLogger)
	authMW := middleware.NewAuthMiddleware(deps.provider)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware(discardLogger))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)
		r.Post("/auth/reset-password", authHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Post("/auth/logout", authHandler.Logout)

			r.Route("/flashcard-sets", func(r chi.Router) {
				r.Post("/", setHandler.CreateSet)
				r.Get("/", setHandler.ListSets)
				r.Get("/{set_id}", setHandler.GetSet)
				r.Patch("/{set_id}", setHandler.UpdateSet)

				r.Post("/{set_id}/flashcards", cardHandler.CreateFlashcard)
				r.Get("/{set_id}/flashcards", cardHandler.ListFlashcards)
				r.Patch("/{set_id}/flashcards/{id}", cardHandler.UpdateFlashcard)
				r.Delete("/{set_id}/flashcards/{id}", cardHandler.DeleteFlashcard)
			})

			if deps.accumulator != nil {
				genHandler := NewGenerationHandler(deps.accumulator, discardLogger)
				r.Post("/generations", genHandler.Generate)
				r.Get("/generations/models", genHandler.ListModels)
			}
		})
	})
	return r
}

// doRequest sends an authenticated request. A string body is sent verbatim;
// any other non-nil body is JSON encoded.
func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return doRequestWithToken(t, h, method, path, body, testToken)
}

func doRequestWithToken(t *testing.T, h http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func strPtr(s string) *string { return &s }

var _ auth.Provider = (*mocks.MockAuthProvider)(nil)
