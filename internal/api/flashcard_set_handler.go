package api

import (
	"log/slog"
	"net/http"

	"github.com/Ketaiwk/10xcards/internal/api/shared"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/service"
)

// FlashcardSetHandler handles flashcard set HTTP requests.
type FlashcardSetHandler struct {
	setService service.FlashcardSetService
	logger     *slog.Logger
}

// NewFlashcardSetHandler creates a new FlashcardSetHandler.
func NewFlashcardSetHandler(setService service.FlashcardSetService, logger *slog.Logger) *FlashcardSetHandler {
	if setService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("setService cannot be nil for FlashcardSetHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardSetHandler{
		setService: setService,
		logger:     logger.With(slog.String("component", "flashcard_set_handler")),
	}
}

// CreateSet handles POST /flashcard-sets.
func (h *FlashcardSetHandler) CreateSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateSetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	set, err := h.setService.Create(r.Context(), userID, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create flashcard set")
		return
	}

	log.Debug("flashcard set created",
		slog.String("user_id", userID.String()),
		slog.String("set_id", set.ID.String()),
		slog.Bool("generate_ai_cards", req.GenerateAICards))
	shared.RespondWithJSON(w, r, http.StatusCreated, set)
}

// ListSets handles GET /flashcard-sets.
func (h *FlashcardSetHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	params, err := parseListSetsParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.setService.List(r.Context(), userID, params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcard sets")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

func parseListSetsParams(r *http.Request) (service.ListSetsParams, error) {
	var (
		p   service.ListSetsParams
		err error
	)
	if p.Page, err = queryInt(r, "page"); err != nil {
		return p, err
	}
	if p.Limit, err = queryInt(r, "limit"); err != nil {
		return p, err
	}
	q := r.URL.Query()
	p.SortBy = q.Get("sort_by")
	p.SortOrder = q.Get("sort_order")
	return p, nil
}

// GetSet handles GET /flashcard-sets/{set_id}.
func (h *FlashcardSetHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	userID, ids, ok := requireUserAndPathIDs(w, r, "set_id")
	if !ok {
		return
	}

	set, err := h.setService.GetByID(r.Context(), userID, ids[0])
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get flashcard set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, set)
}

// UpdateSet handles PATCH /flashcard-sets/{set_id}.
func (h *FlashcardSetHandler) UpdateSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ids, ok := requireUserAndPathIDs(w, r, "set_id")
	if !ok {
		return
	}

	var req UpdateSetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	set, err := h.setService.Update(r.Context(), userID, ids[0], req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update flashcard set")
		return
	}

	log.Debug("flashcard set updated",
		slog.String("user_id", userID.String()),
		slog.String("set_id", set.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, set)
}
