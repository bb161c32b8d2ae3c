package api

import (
	"log/slog"
	"net/http"

	"github.com/Ketaiwk/10xcards/internal/api/shared"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/service"
)

// FlashcardHandler handles HTTP requests for the cards of a set.
type FlashcardHandler struct {
	cardService service.FlashcardService
	logger      *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(cardService service.FlashcardService, logger *slog.Logger) *FlashcardHandler {
	if cardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardService cannot be nil for FlashcardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardHandler{
		cardService: cardService,
		logger:      logger.With(slog.String("component", "flashcard_handler")),
	}
}

// CreateFlashcard handles POST /flashcard-sets/{set_id}/flashcards.
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ids, ok := requireUserAndPathIDs(w, r, "set_id")
	if !ok {
		return
	}

	var req CreateFlashcardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cardService.Create(r.Context(), userID, ids[0], req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create flashcard")
		return
	}

	log.Debug("flashcard created",
		slog.String("set_id", ids[0].String()),
		slog.String("flashcard_id", card.ID.String()),
		slog.String("creation_type", string(card.CreationType)))
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// ListFlashcards handles GET /flashcard-sets/{set_id}/flashcards.
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ids, ok := requireUserAndPathIDs(w, r, "set_id")
	if !ok {
		return
	}

	params, err := parseListFlashcardsParams(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.cardService.List(r.Context(), userID, ids[0], params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list flashcards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

func parseListFlashcardsParams(r *http.Request) (service.ListFlashcardsParams, error) {
	var (
		p   service.ListFlashcardsParams
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
	if raw := q.Get("creation_type"); raw != "" {
		ct, err := domain.ParseCreationType(raw)
		if err != nil {
			return p, err
		}
		p.CreationType = &ct
	}
	return p, nil
}

// UpdateFlashcard handles PATCH /flashcard-sets/{set_id}/flashcards/{id}.
func (h *FlashcardHandler) UpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ids, ok := requireUserAndPathIDs(w, r, "set_id", "id")
	if !ok {
		return
	}

	var req UpdateFlashcardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cardService.Update(r.Context(), userID, ids[0], ids[1], req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update flashcard")
		return
	}

	log.Debug("flashcard updated",
		slog.String("set_id", ids[0].String()),
		slog.String("flashcard_id", card.ID.String()),
		slog.String("creation_type", string(card.CreationType)))
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteFlashcard handles DELETE /flashcard-sets/{set_id}/flashcards/{id}.
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ids, ok := requireUserAndPathIDs(w, r, "set_id", "id")
	if !ok {
		return
	}

	if err := h.cardService.Delete(r.Context(), userID, ids[0], ids[1]); err != nil {
		HandleAPIError(w, r, err, "Failed to delete flashcard")
		return
	}

	log.Debug("flashcard deleted",
		slog.String("set_id", ids[0].String()),
		slog.String("flashcard_id", ids[1].String()))
	w.WriteHeader(http.StatusNoContent)
}
