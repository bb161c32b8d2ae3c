package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/google/uuid"
)

// FlashcardSortFields are the accepted sort_by values for flashcard listings.
var FlashcardSortFields = []string{"created_at", "updated_at", "question", "answer"}

// Limits for flashcard listings.
const (
	DefaultFlashcardPageLimit = 30
	MaxFlashcardPageLimit     = 100
)

// CreateFlashcardInput is the input of FlashcardService.Create.
type CreateFlashcardInput struct {
	Question     string
	Answer       string
	CreationType domain.CreationType
}

// ListFlashcardsParams controls FlashcardService.List. Zero values take defaults.
type ListFlashcardsParams struct {
	Page         int
	Limit        int
	SortBy       string
	SortOrder    string
	CreationType *domain.CreationType
}

// UpdateFlashcardInput is a partial update of a flashcard.
type UpdateFlashcardInput = domain.FlashcardPatch

// FlashcardService provides operations on the flashcards of a set. Ownership
// of the set is verified before every operation.
type FlashcardService interface {
	// Create adds one card. It fails with a limit error when the set already
	// holds the maximum number of cards.
	Create(ctx context.Context, owner, setID uuid.UUID, in CreateFlashcardInput) (*domain.Flashcard, error)

	// CreateBatch adds several cards atomically within the set limit.
	CreateBatch(ctx context.Context, owner, setID uuid.UUID, in []CreateFlashcardInput) ([]*domain.Flashcard, error)

	// FillBatch adds the leading cards that still fit in the set and returns
	// them. It fails with a limit error only when the set is already full.
	FillBatch(ctx context.Context, owner, setID uuid.UUID, in []CreateFlashcardInput) ([]*domain.Flashcard, error)

	// List returns one page of the set's non-deleted cards.
	List(ctx context.Context, owner, setID uuid.UUID, params ListFlashcardsParams) (Page[*domain.Flashcard], error)

	// Update applies a partial update to a non-deleted card of the set.
	Update(ctx context.Context, owner, setID, id uuid.UUID, in UpdateFlashcardInput) (*domain.Flashcard, error)

	// Delete soft-deletes a card. Deleting a deleted card is a no-op.
	Delete(ctx context.Context, owner, setID, id uuid.UUID) error
}

type flashcardServiceImpl struct {
	db     *sql.DB
	sets   store.FlashcardSetStore
	cards  store.FlashcardStore
	now    func() time.Time
	logger *slog.Logger
}

// NewFlashcardService creates a FlashcardService.
func NewFlashcardService(
	db *sql.DB,
	sets store.FlashcardSetStore,
	cards store.FlashcardStore,
	logger *slog.Logger,
) (FlashcardService, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db", ErrNilDependency)
	}
	if sets == nil {
		return nil, fmt.Errorf("%w: flashcard set store", ErrNilDependency)
	}
	if cards == nil {
		return nil, fmt.Errorf("%w: flashcard store", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &flashcardServiceImpl{
		db:     db,
		sets:   sets,
		cards:  cards,
		now:    time.Now,
		logger: logger.With(slog.String("component", "flashcard_service")),
	}, nil
}

// Create implements FlashcardService.Create
func (s *flashcardServiceImpl) Create(
	ctx context.Context,
	owner, setID uuid.UUID,
	in CreateFlashcardInput,
) (*domain.Flashcard, error) {
	cards, err := s.CreateBatch(ctx, owner, setID, []CreateFlashcardInput{in})
	if err != nil {
		return nil, err
	}
	return cards[0], nil
}

// CreateBatch implements FlashcardService.CreateBatch
func (s *flashcardServiceImpl) CreateBatch(
	ctx context.Context,
	owner, setID uuid.UUID,
	in []CreateFlashcardInput,
) ([]*domain.Flashcard, error) {
	return s.insert(ctx, owner, setID, in, false)
}

// FillBatch implements FlashcardService.FillBatch
func (s *flashcardServiceImpl) FillBatch(
	ctx context.Context,
	owner, setID uuid.UUID,
	in []CreateFlashcardInput,
) ([]*domain.Flashcard, error) {
	return s.insert(ctx, owner, setID, in, true)
}

// insert stores cards under a lock on the set row, so concurrent creates for
// the same set are serialized and the limit check holds. With trim set, the
// cards that do not fit are dropped instead of failing the whole batch.
func (s *flashcardServiceImpl) insert(
	ctx context.Context,
	owner, setID uuid.UUID,
	in []CreateFlashcardInput,
	trim bool,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(in) == 0 {
		return []*domain.Flashcard{}, nil
	}

	cards := make([]*domain.Flashcard, 0, len(in))
	for _, item := range in {
		card, err := domain.NewFlashcard(setID, item.Question, item.Answer, item.CreationType)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txSets := s.sets.WithTx(tx)
		txCards := s.cards.WithTx(tx)

		if err := txSets.LockForUpdate(ctx, owner, setID); err != nil {
			return err
		}

		count, err := txCards.CountActive(ctx, setID)
		if err != nil {
			return err
		}
		room := domain.MaxFlashcardsPerSet - count
		if trim && room > 0 && room < len(cards) {
			log.Warn("set filled up during generation, dropping extra cards",
				slog.String("set_id", setID.String()),
				slog.Int("dropped", len(cards)-room))
			cards = cards[:room]
		}
		if len(cards) > room {
			log.Debug("flashcard limit reached",
				slog.String("set_id", setID.String()),
				slog.Int("count", count),
				slog.Int("requested", len(cards)))
			return domain.NewLimitExceededError(domain.MaxFlashcardsPerSet)
		}

		if len(cards) == 1 {
			return txCards.Create(ctx, cards[0])
		}
		return txCards.CreateMultiple(ctx, cards)
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			log.Error("failed to create flashcards",
				slog.String("error", err.Error()),
				slog.String("set_id", setID.String()))
		}
		return nil, NewServiceError("flashcard", "create", err)
	}

	log.Info("flashcards created",
		slog.String("set_id", setID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// List implements FlashcardService.List
func (s *flashcardServiceImpl) List(
	ctx context.Context,
	owner, setID uuid.UUID,
	params ListFlashcardsParams,
) (Page[*domain.Flashcard], error) {
	lp := listParams{page: params.Page, limit: params.Limit, sortBy: params.SortBy, sortOrder: params.SortOrder}
	if err := lp.normalize(DefaultFlashcardPageLimit, MaxFlashcardPageLimit, FlashcardSortFields); err != nil {
		return Page[*domain.Flashcard]{}, err
	}
	if params.CreationType != nil && !params.CreationType.Valid() {
		return Page[*domain.Flashcard]{}, domain.ErrInvalidCreationType
	}

	if err := s.verifySet(ctx, owner, setID, "list"); err != nil {
		return Page[*domain.Flashcard]{}, err
	}

	cards, total, err := s.cards.List(ctx, setID, store.FlashcardListOptions{
		Page:         lp.page,
		Limit:        lp.limit,
		SortBy:       lp.sortBy,
		SortOrder:    store.SortOrder(lp.sortOrder),
		CreationType: params.CreationType,
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list flashcards",
			slog.String("error", err.Error()),
			slog.String("set_id", setID.String()))
		return Page[*domain.Flashcard]{}, NewServiceError("flashcard", "list", err)
	}
	if cards == nil {
		cards = []*domain.Flashcard{}
	}

	return Page[*domain.Flashcard]{Items: cards, Total: total, Page: lp.page, Limit: lp.limit}, nil
}

// Update implements FlashcardService.Update
func (s *flashcardServiceImpl) Update(
	ctx context.Context,
	owner, setID, id uuid.UUID,
	in UpdateFlashcardInput,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.IsEmpty() {
		return nil, domain.ErrEmptyFlashcardPatch
	}
	if err := s.verifySet(ctx, owner, setID, "update"); err != nil {
		return nil, err
	}

	card, err := s.cards.GetByID(ctx, setID, id)
	if err != nil {
		return nil, NewServiceError("flashcard", "update", err)
	}

	before := card.CreationType
	if err := card.ApplyPatch(in, s.now()); err != nil {
		return nil, err
	}

	if err := s.cards.Update(ctx, card); err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to update flashcard",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", id.String()))
		}
		return nil, NewServiceError("flashcard", "update", err)
	}

	log.Info("flashcard updated",
		slog.String("flashcard_id", id.String()),
		slog.String("creation_type_before", string(before)),
		slog.String("creation_type", string(card.CreationType)))
	return card, nil
}

// Delete implements FlashcardService.Delete
func (s *flashcardServiceImpl) Delete(ctx context.Context, owner, setID, id uuid.UUID) error {
	if err := s.verifySet(ctx, owner, setID, "delete"); err != nil {
		return err
	}
	if err := s.cards.SoftDelete(ctx, setID, id); err != nil {
		return NewServiceError("flashcard", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("flashcard deleted",
		slog.String("flashcard_id", id.String()),
		slog.String("set_id", setID.String()))
	return nil
}

// verifySet checks that the set exists, is not deleted and belongs to owner.
func (s *flashcardServiceImpl) verifySet(ctx context.Context, owner, setID uuid.UUID, op string) error {
	if _, err := s.sets.GetByID(ctx, owner, setID); err != nil {
		return NewServiceError("flashcard", op, err)
	}
	return nil
}
