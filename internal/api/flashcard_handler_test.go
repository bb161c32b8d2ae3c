package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/mocks"
	"github.com/Ketaiwk/10xcards/internal/service"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardsPath(setID uuid.UUID) string {
	return "/api/flashcard-sets/" + setID.String() + "/flashcards"
}

func TestCreateFlashcard(t *testing.T) {
	t.Parallel()

	t.Run("defaults to manual", func(t *testing.T) {
		t.Parallel()
		userID, setID := uuid.New(), uuid.New()
		var got service.CreateFlashcardInput
		cards := &mocks.MockFlashcardService{
			CreateFn: func(_ context.Context, owner, sid uuid.UUID, in service.CreateFlashcardInput) (*domain.Flashcard, error) {
				assert.Equal(t, userID, owner)
				assert.Equal(t, setID, sid)
				got = in
				return domain.NewFlashcard(sid, in.Question, in.Answer, in.CreationType)
			},
		}
		router := newTestRouter(t, testDeps{userID: userID, cards: cards})

		rec := doRequest(t, router, http.MethodPost, cardsPath(setID), map[string]any{
			"question": "What is ATP?",
			"answer":   "The energy currency of the cell.",
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, domain.CreationTypeManual, got.CreationType)
		card := decodeBody[domain.Flashcard](t, rec)
		assert.Equal(t, "What is ATP?", card.Question)
		assert.Equal(t, setID, card.SetID)
	})

	t.Run("keeps explicit creation type", func(t *testing.T) {
		t.Parallel()
		var got service.CreateFlashcardInput
		cards := &mocks.MockFlashcardService{
			CreateFn: func(_ context.Context, _, sid uuid.UUID, in service.CreateFlashcardInput) (*domain.Flashcard, error) {
				got = in
				return domain.NewFlashcard(sid, in.Question, in.Answer, in.CreationType)
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodPost, cardsPath(uuid.New()), map[string]any{
			"question":      "Q",
			"answer":        "A",
			"creation_type": "ai_generated",
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, domain.CreationTypeAIGenerated, got.CreationType)
	})

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"question too long", map[string]any{"question": strings.Repeat("q", 201), "answer": "a"}, "question: must be at most 200 characters long"},
		{"answer too long", map[string]any{"question": "q", "answer": strings.Repeat("a", 501)}, "answer: must be at most 500 characters long"},
		{"missing answer", map[string]any{"question": "q"}, "answer: is required"},
		{"unknown creation type", map[string]any{"question": "q", "answer": "a", "creation_type": "imported"}, "creation_type: must be one of manual, ai_generated, ai_edited"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards := &mocks.MockFlashcardService{
				CreateFn: func(context.Context, uuid.UUID, uuid.UUID, service.CreateFlashcardInput) (*domain.Flashcard, error) {
					t.Fatal("service must not be called for an invalid request")
					return nil, nil
				},
			}
			router := newTestRouter(t, testDeps{cards: cards})

			rec := doRequest(t, router, http.MethodPost, cardsPath(uuid.New()), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec).Error)
		})
	}

	t.Run("limit exceeded", func(t *testing.T) {
		t.Parallel()
		cards := &mocks.MockFlashcardService{
			CreateFn: func(context.Context, uuid.UUID, uuid.UUID, service.CreateFlashcardInput) (*domain.Flashcard, error) {
				return nil, service.NewServiceError("flashcard", "create", domain.ErrLimitExceeded)
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodPost, cardsPath(uuid.New()), map[string]any{"question": "q", "answer": "a"})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Flashcard limit exceeded (30 per set)", decodeError(t, rec).Error)
	})

	t.Run("set of another user", func(t *testing.T) {
		t.Parallel()
		cards := &mocks.MockFlashcardService{
			CreateFn: func(context.Context, uuid.UUID, uuid.UUID, service.CreateFlashcardInput) (*domain.Flashcard, error) {
				return nil, service.NewServiceError("flashcard", "create", store.ErrFlashcardSetNotFound)
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodPost, cardsPath(uuid.New()), map[string]any{"question": "q", "answer": "a"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, MsgSetNotFound, decodeError(t, rec).Error)
	})

	t.Run("internal error is not leaked", func(t *testing.T) {
		t.Parallel()
		cards := &mocks.MockFlashcardService{
			CreateFn: func(context.Context, uuid.UUID, uuid.UUID, service.CreateFlashcardInput) (*domain.Flashcard, error) {
				return nil, fmt.Errorf("insert failed: pq: relation flashcards does not exist")
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodPost, cardsPath(uuid.New()), map[string]any{"question": "q", "answer": "a"})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to create flashcard", decodeError(t, rec).Error)
		assert.NotContains(t, rec.Body.String(), "relation")
	})
}

func TestListFlashcards(t *testing.T) {
	t.Parallel()

	t.Run("filters by creation type", func(t *testing.T) {
		t.Parallel()
		setID := uuid.New()
		var got service.ListFlashcardsParams
		cards := &mocks.MockFlashcardService{
			ListFn: func(_ context.Context, _, sid uuid.UUID, p service.ListFlashcardsParams) (service.Page[*domain.Flashcard], error) {
				assert.Equal(t, setID, sid)
				got = p
				return service.Page[*domain.Flashcard]{Items: []*domain.Flashcard{}, Page: 1, Limit: 30}, nil
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodGet, cardsPath(setID)+"?creation_type=ai_edited&sort_by=question", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, got.CreationType)
		assert.Equal(t, domain.CreationTypeAIEdited, *got.CreationType)
		assert.Equal(t, "question", got.SortBy)
		assert.JSONEq(t, `{"items":[],"total":0,"page":1,"limit":30}`, rec.Body.String())
	})

	t.Run("invalid creation type", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, testDeps{})

		rec := doRequest(t, router, http.MethodGet, cardsPath(uuid.New())+"?creation_type=imported", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "creation_type: must be ai_generated, ai_edited, or manual", decodeError(t, rec).Error)
	})

	t.Run("limit above maximum", func(t *testing.T) {
		t.Parallel()
		cards := &mocks.MockFlashcardService{
			ListFn: func(_ context.Context, _, _ uuid.UUID, p service.ListFlashcardsParams) (service.Page[*domain.Flashcard], error) {
				assert.Equal(t, 101, p.Limit)
				return service.Page[*domain.Flashcard]{}, domain.NewValidationError("limit", "must be between 1 and 100", nil)
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodGet, cardsPath(uuid.New())+"?limit=101", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateFlashcard(t *testing.T) {
	t.Parallel()

	t.Run("passes only supplied fields", func(t *testing.T) {
		t.Parallel()
		setID := uuid.New()
		card, err := domain.NewFlashcard(setID, "Q", "A", domain.CreationTypeAIGenerated)
		require.NoError(t, err)

		var got service.UpdateFlashcardInput
		cards := &mocks.MockFlashcardService{
			UpdateFn: func(_ context.Context, _, sid, id uuid.UUID, in service.UpdateFlashcardInput) (*domain.Flashcard, error) {
				assert.Equal(t, setID, sid)
				assert.Equal(t, card.ID, id)
				got = in
				card.Answer = *in.Answer
				card.CreationType = domain.CreationTypeAIEdited
				return card, nil
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodPatch, cardsPath(setID)+"/"+card.ID.String(),
			map[string]any{"answer": "Adenosine triphosphate"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Nil(t, got.Question)
		assert.Nil(t, got.CreationType)
		require.NotNil(t, got.Answer)
		assert.Equal(t, "Adenosine triphosphate", *got.Answer)
		assert.Equal(t, domain.CreationTypeAIEdited, decodeBody[domain.Flashcard](t, rec).CreationType)
	})

	t.Run("maps creation type", func(t *testing.T) {
		t.Parallel()
		var got service.UpdateFlashcardInput
		cards := &mocks.MockFlashcardService{
			UpdateFn: func(_ context.Context, _, sid, _ uuid.UUID, in service.UpdateFlashcardInput) (*domain.Flashcard, error) {
				got = in
				return domain.NewFlashcard(sid, "Q", "A", *in.CreationType)
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodPatch, cardsPath(uuid.New())+"/"+uuid.NewString(),
			map[string]any{"creation_type": "ai_edited"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, got.CreationType)
		assert.Equal(t, domain.CreationTypeAIEdited, *got.CreationType)
	})

	t.Run("invalid card id", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, testDeps{})

		rec := doRequest(t, router, http.MethodPatch, cardsPath(uuid.New())+"/nope", map[string]any{"answer": "a"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "id: has invalid format", decodeError(t, rec).Error)
	})

	t.Run("card of another set", func(t *testing.T) {
		t.Parallel()
		cards := &mocks.MockFlashcardService{
			UpdateFn: func(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, service.UpdateFlashcardInput) (*domain.Flashcard, error) {
				return nil, store.ErrFlashcardNotFound
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodPatch, cardsPath(uuid.New())+"/"+uuid.NewString(), map[string]any{"answer": "a"})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, MsgFlashcardNotFound, decodeError(t, rec).Error)
	})
}

func TestDeleteFlashcard(t *testing.T) {
	t.Parallel()

	t.Run("soft deletes", func(t *testing.T) {
		t.Parallel()
		userID, setID, cardID := uuid.New(), uuid.New(), uuid.New()
		var calls int
		cards := &mocks.MockFlashcardService{
			DeleteFn: func(_ context.Context, owner, sid, id uuid.UUID) error {
				calls++
				assert.Equal(t, userID, owner)
				assert.Equal(t, setID, sid)
				assert.Equal(t, cardID, id)
				return nil
			},
		}
		router := newTestRouter(t, testDeps{userID: userID, cards: cards})

		for i := 0; i < 2; i++ {
			rec := doRequest(t, router, http.MethodDelete, cardsPath(setID)+"/"+cardID.String(), nil)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Body.String())
		}
		assert.Equal(t, 2, calls)
	})

	t.Run("unknown card", func(t *testing.T) {
		t.Parallel()
		cards := &mocks.MockFlashcardService{
			DeleteFn: func(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error {
				return service.NewServiceError("flashcard", "delete", store.ErrFlashcardNotFound)
			},
		}
		router := newTestRouter(t, testDeps{cards: cards})

		rec := doRequest(t, router, http.MethodDelete, cardsPath(uuid.New())+"/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, MsgFlashcardNotFound, decodeError(t, rec).Error)
	})
}
