package generation_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressEventJSON(t *testing.T) {
	t.Parallel()

	ev := generation.ProgressEvent(generation.Progress{
		Card:     domain.GeneratedCard{Front: "What is ATP?", Back: "Energy currency"},
		Count:    1,
		Target:   3,
		Progress: 33,
	})

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"progress","progress":33,"card":{"front":"What is ATP?","back":"Energy currency"}}`, string(raw))
}

func TestDoneEvent(t *testing.T) {
	t.Parallel()

	t.Run("carries result", func(t *testing.T) {
		t.Parallel()
		ev := generation.DoneEvent(generation.Result{
			Cards:    []domain.GeneratedCard{{Front: "Q", Back: "A"}},
			Attempts: 4,
			Duration: 1500 * time.Millisecond,
		})

		assert.Equal(t, generation.EventDone, ev.Type)
		assert.Len(t, ev.Cards, 1)
		assert.Equal(t, 4, ev.Attempts)
		assert.Equal(t, int64(1500), ev.DurationMs)
		assert.NoError(t, ev.Err())
	})

	t.Run("empty result still lists cards", func(t *testing.T) {
		t.Parallel()
		ev := generation.DoneEvent(generation.Result{})

		assert.NotNil(t, ev.Cards)
		assert.Empty(t, ev.Cards)
	})
}

func TestErrorEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		kind    domain.Kind
		message string
	}{
		{
			name:    "provider auth",
			err:     generation.NewProviderError("openrouter", domain.KindProviderAuth, "status 401: sk-or-v1-secret", nil),
			kind:    domain.KindProviderAuth,
			message: generation.UserMessage(domain.KindProviderAuth),
		},
		{
			name:    "network",
			err:     generation.NewProviderError("gemini", domain.KindProviderNetwork, "dial tcp", errors.New("timeout")),
			kind:    domain.KindProviderNetwork,
			message: generation.UserMessage(domain.KindProviderNetwork),
		},
		{
			name:    "validation keeps field",
			err:     domain.ErrSourceTextLength,
			kind:    domain.KindValidation,
			message: "source_text: must be between 1000 and 10000 characters",
		},
		{
			name:    "unknown error is hidden",
			err:     errors.New("pgx: connection refused"),
			kind:    domain.KindInternal,
			message: generation.UserMessage(domain.KindInternal),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := generation.ErrorEvent(tt.err)

			assert.Equal(t, generation.EventError, ev.Type)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, tt.message, ev.Message)
			assert.NotContains(t, ev.Message, "sk-or-v1")

			back := ev.Err()
			require.Error(t, back)
			assert.Equal(t, tt.kind, domain.KindOf(back))
		})
	}
}

func TestEventErrProviderRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(generation.ErrorEvent(
		generation.NewProviderError("openrouter", domain.KindProviderRateLimit, "429", nil)))
	require.NoError(t, err)

	var ev generation.Event
	require.NoError(t, json.Unmarshal(raw, &ev))

	pe, ok := generation.AsProviderError(ev.Err())
	require.True(t, ok)
	assert.Equal(t, domain.KindProviderRateLimit, pe.Kind)
}
