package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Ketaiwk/10xcards/internal/api"
	"github.com/Ketaiwk/10xcards/internal/api/shared"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/redact"
	"github.com/google/uuid"
)

// maxEventSize bounds a single NDJSON line. A done event carries at most
// 30 cards.
const maxEventSize = 1 << 20

// ErrIncompleteStream is returned when a generation stream ends without a
// done or error event.
var ErrIncompleteStream = errors.New("generation stream ended without a final event")

// HTTPClient implements API against the HTTP server.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

var _ API = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the server at baseURL, for example
// "http://localhost:8080". A nil httpClient uses a client without an overall
// timeout so generation streams are not cut off.
func NewHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger.With(slog.String("component", "api_client")),
	}
}

// SetToken sets the bearer token sent with every request.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token pair and keeps the access token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	var out api.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		api.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

// CreateSet calls POST /api/flashcard-sets.
func (c *HTTPClient) CreateSet(ctx context.Context, req api.CreateSetRequest) (*domain.FlashcardSet, error) {
	var set domain.FlashcardSet
	if err := c.doJSON(ctx, http.MethodPost, "/api/flashcard-sets", req, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// CreateFlashcard calls POST /api/flashcard-sets/{set_id}/flashcards.
func (c *HTTPClient) CreateFlashcard(
	ctx context.Context,
	setID uuid.UUID,
	req api.CreateFlashcardRequest,
) (*domain.Flashcard, error) {
	var card domain.Flashcard
	if err := c.doJSON(ctx, http.MethodPost, cardsPath(setID), req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateFlashcard calls PATCH /api/flashcard-sets/{set_id}/flashcards/{id}.
func (c *HTTPClient) UpdateFlashcard(
	ctx context.Context,
	setID, id uuid.UUID,
	req api.UpdateFlashcardRequest,
) (*domain.Flashcard, error) {
	var card domain.Flashcard
	if err := c.doJSON(ctx, http.MethodPatch, cardsPath(setID)+"/"+id.String(), req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteFlashcard calls DELETE /api/flashcard-sets/{set_id}/flashcards/{id}.
func (c *HTTPClient) DeleteFlashcard(ctx context.Context, setID, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, cardsPath(setID)+"/"+id.String(), nil, nil)
}

// ListModels calls GET /api/generations/models.
func (c *HTTPClient) ListModels(ctx context.Context) (*api.ModelsResponse, error) {
	var out api.ModelsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/generations/models", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate calls POST /api/generations and passes every progress and done
// event to onEvent. An error event is returned as an error carrying its
// kind.
func (c *HTTPClient) Generate(
	ctx context.Context,
	req api.GenerationRequest,
	onEvent func(generation.Event),
) error {
	resp, err := c.send(ctx, http.MethodPost, "/api/generations", req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev generation.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("decode generation event: %w", err)
		}
		switch ev.Type {
		case generation.EventProgress:
			onEvent(ev)
		case generation.EventDone:
			onEvent(ev)
			return nil
		case generation.EventError:
			return ev.Err()
		default:
			c.logger.Debug("ignoring unknown generation event", slog.String("type", ev.Type))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read generation stream: %w", err)
	}
	return ErrIncompleteStream
}

func cardsPath(setID uuid.UUID) string {
	return "/api/flashcard-sets/" + setID.String() + "/flashcards"
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", redact.Error(err)))
		return nil, &domain.Error{
			Kind:    domain.KindInternal,
			Message: "server unreachable",
			Err:     err,
		}
	}
	c.logger.Debug("request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))
	return resp, nil
}

// decodeError turns an error response into a domain.Error whose kind
// follows the status code.
func decodeError(resp *http.Response) error {
	var body shared.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &domain.Error{
		Kind:    kindForStatus(resp.StatusCode, body.Error),
		Message: body.Error,
	}
}

func kindForStatus(status int, message string) domain.Kind {
	switch status {
	case http.StatusBadRequest:
		return domain.KindValidation
	case http.StatusUnauthorized:
		return domain.KindUnauthorized
	case http.StatusNotFound:
		return domain.KindNotFound
	case http.StatusConflict:
		if message == api.MsgLimitExceeded {
			return domain.KindLimitExceeded
		}
		return domain.KindConflict
	case http.StatusBadGateway:
		return domain.KindProviderGeneric
	default:
		return domain.KindInternal
	}
}
