package openrouter_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ketaiwk/10xcards/internal/config"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/platform/openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "gen-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "openai/gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	return string(body)
}

func newGenerator(t *testing.T, handler http.HandlerFunc) *openrouter.Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gen, err := openrouter.NewGenerator(config.LLMConfig{
		OpenRouterAPIKey: "sk-or-test",
		OpenRouterURL:    srv.URL,
		Timeout:          5 * time.Second,
		CardLanguage:     "English",
	}, nil)
	require.NoError(t, err)
	return gen
}

func TestGenerateCard_Success(t *testing.T) {
	t.Parallel()

	var got map[string]any
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))
		assert.Equal(t, "https://10xcards.com", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "10xCards", r.Header.Get("X-Title"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completion("```json\n{\"front\":\"What is ATP?\",\"back\":\"Energy currency.\"}\n```"))
	})

	card, err := gen.GenerateCard(context.Background(), generation.Request{
		SourceText: "source",
		Existing:   []domain.GeneratedCard{{Front: "Earlier?", Back: "Yes."}},
	})
	require.NoError(t, err)
	assert.Equal(t, "What is ATP?", card.Front)
	assert.Equal(t, "Energy currency.", card.Back)

	assert.Equal(t, openrouter.DefaultModel, got["model"])
	assert.InDelta(t, 0.7, got["temperature"], 0.001)
	assert.EqualValues(t, 300, got["max_tokens"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].(map[string]any)["content"], "Earlier?")
	assert.Equal(t, "source", messages[1].(map[string]any)["content"])
}

func TestGenerateCard_ModelOverride(t *testing.T) {
	t.Parallel()

	var model string
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		model = body.Model
		_, _ = io.WriteString(w, completion(`{"front":"Q?","back":"A"}`))
	})

	_, err := gen.GenerateCard(context.Background(), generation.Request{
		SourceText: "s",
		Options:    generation.Options{Model: "anthropic/claude-3-haiku"},
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", model)
	assert.Equal(t, openrouter.DefaultModel, gen.Model())
}

func TestGenerateCard_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		kind   domain.Kind
	}{
		{http.StatusUnauthorized, domain.KindProviderAuth},
		{http.StatusForbidden, domain.KindProviderAuth},
		{http.StatusTooManyRequests, domain.KindProviderRateLimit},
		{http.StatusBadRequest, domain.KindProviderValidation},
		{http.StatusInternalServerError, domain.KindProviderGeneric},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"error":{"message":"nope","type":"error","code":"x"}}`)
			})

			_, err := gen.GenerateCard(context.Background(), generation.Request{SourceText: "s"})
			require.Error(t, err)
			assert.Equal(t, tc.kind, domain.KindOf(err))
			pe, ok := generation.AsProviderError(err)
			require.True(t, ok)
			assert.Equal(t, tc.status, pe.StatusCode)
			assert.Equal(t, openrouter.ProviderName, pe.Provider)
		})
	}
}

func TestGenerateCard_InvalidReply(t *testing.T) {
	t.Parallel()

	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, completion("I cannot do that"))
	})

	_, err := gen.GenerateCard(context.Background(), generation.Request{SourceText: "s"})
	assert.Equal(t, domain.KindProviderValidation, domain.KindOf(err))
}

func TestGenerateCard_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gen, err := openrouter.NewGenerator(config.LLMConfig{
		OpenRouterAPIKey: "k",
		OpenRouterURL:    url,
		Timeout:          time.Second,
	}, nil)
	require.NoError(t, err)

	_, err = gen.GenerateCard(context.Background(), generation.Request{SourceText: "s"})
	assert.Equal(t, domain.KindProviderNetwork, domain.KindOf(err))
}

func TestListModels(t *testing.T) {
	t.Parallel()

	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = io.WriteString(w, `{"object":"list","data":[
			{"id":"openai/gpt-4o-mini","object":"model","owned_by":"openai"},
			{"id":"google/gemini-2.0-flash","object":"model","owned_by":"google"}]}`)
	})

	models, err := gen.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "openai/gpt-4o-mini", models[0].ID)
	assert.Equal(t, "google", models[1].OwnedBy)
}

func TestSetModel(t *testing.T) {
	t.Parallel()

	gen := newGenerator(t, http.NotFound)
	assert.ErrorIs(t, gen.SetModel("  "), generation.ErrInvalidConfig)
	require.NoError(t, gen.SetModel("meta-llama/llama-3-8b"))
	assert.Equal(t, "meta-llama/llama-3-8b", gen.Model())
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := openrouter.NewGenerator(config.LLMConfig{}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
