package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithLogger(buf *bytes.Buffer) *http.Request {
	log := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.WithValue(context.Background(), TraceIDKey, "test-trace-id")
	ctx = logger.WithLogger(ctx, log)
	return httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)
}

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, map[string]int{"total": 3})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"total":3}`, w.Body.String())
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	RespondWithJSON(w, requestWithLogger(&buf), http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "failed to encode JSON response")
}

func TestRespondWithError(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	RespondWithError(w, requestWithLogger(&buf), http.StatusBadRequest, "Validation error")

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation error", response.Error)
	assert.Equal(t, "test-trace-id", response.TraceID)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		elevate  bool
		expected string
	}{
		{name: "server error", status: http.StatusInternalServerError, expected: "level=ERROR"},
		{name: "client error", status: http.StatusNotFound, expected: "level=DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized, elevate: true, expected: "level=WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, expected: "level=WARN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := httptest.NewRecorder()
			err := errors.New("query failed for ada@example.com")

			if tc.elevate {
				RespondWithErrorAndLog(w, requestWithLogger(&buf), tc.status, "safe message", err, WithElevatedLogLevel())
			} else {
				RespondWithErrorAndLog(w, requestWithLogger(&buf), tc.status, "safe message", err)
			}

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "safe message", response.Error)

			out := buf.String()
			assert.Contains(t, out, tc.expected)
			assert.Contains(t, out, "trace_id=test-trace-id")
			assert.Contains(t, out, "error_type=")
			assert.NotContains(t, out, "ada@example.com")
		})
	}
}
