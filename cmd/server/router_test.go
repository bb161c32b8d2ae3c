package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ketaiwk/10xcards/internal/api"
	"github.com/Ketaiwk/10xcards/internal/config"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/mocks"
	"github.com/Ketaiwk/10xcards/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken  = "token-123"
	testOrigin = "http://localhost:3000"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// newTestApp builds an application with in-memory collaborators. Sets and
// cards created through it are echoed back with fresh ids.
func newTestApp(t *testing.T, gen *mocks.MockGenerator) *application {
	t.Helper()
	if gen == nil {
		gen = mocks.NewMockGeneratorWithUniqueCards()
	}

	userID := uuid.New()
	sets := &mocks.MockFlashcardSetService{
		CreateFn: func(_ context.Context, owner uuid.UUID, in service.CreateSetInput) (*domain.FlashcardSet, error) {
			return &domain.FlashcardSet{ID: uuid.New(), UserID: owner, Name: in.Name, Description: in.Description}, nil
		},
		ListFn: func(context.Context, uuid.UUID, service.ListSetsParams) (service.Page[*domain.FlashcardSet], error) {
			return service.Page[*domain.FlashcardSet]{Items: []*domain.FlashcardSet{}, Page: 1, Limit: 10}, nil
		},
	}
	cards := &mocks.MockFlashcardService{
		CreateFn: func(_ context.Context, _, setID uuid.UUID, in service.CreateFlashcardInput) (*domain.Flashcard, error) {
			return &domain.Flashcard{
				ID:           uuid.New(),
				SetID:        setID,
				Question:     in.Question,
				Answer:       in.Answer,
				CreationType: in.CreationType,
			}, nil
		},
	}

	return &application{
		config: &config.Config{
			Server: config.ServerConfig{
				AllowedOrigins:  []string{testOrigin},
				ReadTimeout:     5 * time.Second,
				WriteTimeout:    time.Minute,
				IdleTimeout:     time.Minute,
				ShutdownTimeout: 5 * time.Second,
			},
		},
		logger:       discardLogger,
		setService:   sets,
		cardService:  cards,
		accumulator:  generation.NewAccumulator(gen, discardLogger, generation.WithSleeper(noSleep)),
		authProvider: mocks.NewMockAuthProviderForUser(userID),
	}
}

func TestRouterHealth(t *testing.T) {
	t.Parallel()

	router := newTestApp(t, nil).setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterCORS(t *testing.T) {
	t.Parallel()

	router := newTestApp(t, nil).setupRouter()

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/flashcard-sets", nil)
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/flashcard-sets", nil)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRouterAuthentication(t *testing.T) {
	t.Parallel()

	router := newTestApp(t, nil).setupRouter()

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/flashcard-sets", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/flashcard-sets", nil)
		req.Header.Set("Authorization", "Bearer "+testToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var page service.Page[*domain.FlashcardSet]
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Page)
	})
}

func TestRouterModels(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{
		ModelName: "openai/gpt-4o-mini",
		Models:    []generation.Model{{ID: "openai/gpt-4o-mini"}, {ID: "anthropic/claude-3-haiku"}},
	}
	router := newTestApp(t, gen).setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/generations/models", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.ModelsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "openai/gpt-4o-mini", resp.Default)
	assert.Len(t, resp.Models, 2)
}

func TestServeGracefulShutdown(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	var closed bool
	app.closers = append(app.closers, func(context.Context) error {
		closed = true
		return nil
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln, app.setupRouter()) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, closed, "closers run on shutdown")
	assert.Nil(t, app.closers)
}
