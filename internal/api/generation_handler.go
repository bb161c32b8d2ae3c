package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Ketaiwk/10xcards/internal/api/shared"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/redact"
)

// NDJSONContentType is the content type of generation streams.
const NDJSONContentType = "application/x-ndjson"

// CardAccumulator runs the generation loop. *generation.Accumulator
// implements it.
type CardAccumulator interface {
	Run(ctx context.Context, req generation.RunRequest, onProgress generation.ProgressFunc) (generation.Result, error)
	Generator() generation.Generator
}

// GenerationHandler streams AI generated flashcards to the client.
type GenerationHandler struct {
	accumulator CardAccumulator
	logger      *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(accumulator CardAccumulator, logger *slog.Logger) *GenerationHandler {
	if accumulator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("accumulator cannot be nil for GenerationHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		accumulator: accumulator,
		logger:      logger.With(slog.String("component", "generation_handler")),
	}
}

// Generate handles POST /generations. Request errors are answered with a
// plain JSON error; once the stream has started every outcome is an event.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req GenerationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	runReq := req.toRunRequest()
	if err := h.validateRun(runReq); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", NDJSONContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	stream := newEventStream(w, log)
	stream.flush()

	log.Info("generation stream started",
		slog.String("user_id", userID.String()),
		slog.Int("target", runReq.Target))

	res, err := h.accumulator.Run(r.Context(), runReq, func(p generation.Progress) {
		stream.send(generation.ProgressEvent(p))
	})
	switch {
	case err != nil && r.Context().Err() != nil:
		log.Info("generation stream aborted by client",
			slog.Int("cards", len(res.Cards)),
			slog.Int("attempts", res.Attempts))
	case err != nil:
		log.Warn("generation stream failed", slog.String("error", redact.Error(err)))
		stream.send(generation.ErrorEvent(err))
	case len(res.Cards) == 0 && res.LastErr != nil:
		log.Warn("generation produced no cards", slog.String("error", redact.Error(res.LastErr)))
		stream.send(generation.ErrorEvent(res.LastErr))
	default:
		stream.send(generation.DoneEvent(res))
	}
}

// validateRun rejects requests the loop would refuse before streaming
// starts. Option range errors are client errors here, not provider failures.
func (h *GenerationHandler) validateRun(req generation.RunRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := req.Options.Resolve(h.accumulator.Generator().Model()); err != nil {
		if pe, ok := generation.AsProviderError(err); ok {
			return domain.NewValidationError("options", pe.Message, err)
		}
		return err
	}
	return nil
}

// ListModels handles GET /generations/models.
func (h *GenerationHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	gen := h.accumulator.Generator()
	models, err := gen.ListModels(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list models")
		return
	}
	if models == nil {
		models = []generation.Model{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ModelsResponse{Default: gen.Model(), Models: models})
}

// eventStream writes one JSON event per line and flushes after each.
type eventStream struct {
	enc     *json.Encoder
	flusher http.Flusher
	log     *slog.Logger
}

func newEventStream(w http.ResponseWriter, log *slog.Logger) *eventStream {
	flusher, _ := w.(http.Flusher)
	return &eventStream{enc: json.NewEncoder(w), flusher: flusher, log: log}
}

func (s *eventStream) send(ev generation.Event) {
	if err := s.enc.Encode(ev); err != nil {
		s.log.Debug("failed to write generation event",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()))
		return
	}
	s.flush()
}

func (s *eventStream) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
