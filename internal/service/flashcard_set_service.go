package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/google/uuid"
)

// SetSortFields are the accepted sort_by values for set listings.
var SetSortFields = []string{"created_at", "updated_at", "name"}

// Limits for set listings.
const (
	DefaultSetPageLimit = 10
	MaxSetPageLimit     = 50
)

// GenerationScheduler queues background AI generation for a new set.
type GenerationScheduler interface {
	ScheduleSetGeneration(ctx context.Context, userID, setID uuid.UUID, count int) error
}

// CreateSetInput is the input of FlashcardSetService.Create.
type CreateSetInput struct {
	Name            string
	Description     *string
	SourceText      *string
	GenerateAICards bool
	// CardCount is the number of cards to generate. Zero uses the default.
	CardCount int
}

// ListSetsParams controls FlashcardSetService.List. Zero values take defaults.
type ListSetsParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// UpdateSetInput is a partial update of a set. Nil fields are left unchanged.
type UpdateSetInput struct {
	Name        *string
	Description *string
	IsDeleted   *bool
}

// IsEmpty reports whether the input changes nothing.
func (in UpdateSetInput) IsEmpty() bool {
	return in.Name == nil && in.Description == nil && in.IsDeleted == nil
}

// FlashcardSetService provides flashcard set operations. Every operation is
// scoped to the owning user.
type FlashcardSetService interface {
	// Create stores a new set and, if requested, schedules AI generation.
	Create(ctx context.Context, owner uuid.UUID, in CreateSetInput) (*domain.FlashcardSet, error)

	// List returns one page of the owner's non-deleted sets without source text.
	List(ctx context.Context, owner uuid.UUID, params ListSetsParams) (Page[*domain.FlashcardSet], error)

	// GetByID returns the set, or a not found error if it is missing,
	// deleted or owned by someone else.
	GetByID(ctx context.Context, owner, setID uuid.UUID) (*domain.FlashcardSet, error)

	// Update applies a partial update to the set.
	Update(ctx context.Context, owner, setID uuid.UUID, in UpdateSetInput) (*domain.FlashcardSet, error)

	// RecordGenerationDuration stores how long AI generation took for the set.
	RecordGenerationDuration(ctx context.Context, owner, setID uuid.UUID, d time.Duration) error
}

type flashcardSetServiceImpl struct {
	sets             store.FlashcardSetStore
	scheduler        GenerationScheduler
	defaultCardCount int
	logger           *slog.Logger
}

// NewFlashcardSetService creates a FlashcardSetService. scheduler may be nil,
// in which case requests for AI generation are rejected.
func NewFlashcardSetService(
	sets store.FlashcardSetStore,
	scheduler GenerationScheduler,
	defaultCardCount int,
	logger *slog.Logger,
) (FlashcardSetService, error) {
	if sets == nil {
		return nil, fmt.Errorf("%w: flashcard set store", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if defaultCardCount < 1 || defaultCardCount > domain.MaxFlashcardsPerSet {
		defaultCardCount = 10
	}

	return &flashcardSetServiceImpl{
		sets:             sets,
		scheduler:        scheduler,
		defaultCardCount: defaultCardCount,
		logger:           logger.With(slog.String("component", "flashcard_set_service")),
	}, nil
}

// SetScheduler attaches the scheduler after construction. The worker that
// runs generation depends on the services, so it is created after them.
func SetScheduler(svc FlashcardSetService, scheduler GenerationScheduler) {
	if impl, ok := svc.(*flashcardSetServiceImpl); ok {
		impl.scheduler = scheduler
	}
}

// Create implements FlashcardSetService.Create
func (s *flashcardSetServiceImpl) Create(
	ctx context.Context,
	owner uuid.UUID,
	in CreateSetInput,
) (*domain.FlashcardSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	count := in.CardCount
	if in.GenerateAICards {
		if in.SourceText == nil || strings.TrimSpace(*in.SourceText) == "" {
			return nil, domain.ErrSourceTextMissing
		}
		if count == 0 {
			count = s.defaultCardCount
		}
		if count < 1 || count > domain.MaxFlashcardsPerSet {
			return nil, domain.NewValidationError("card_count",
				fmt.Sprintf("must be between 1 and %d", domain.MaxFlashcardsPerSet), nil)
		}
		if s.scheduler == nil {
			return nil, domain.NewValidationError("generate_ai_cards", "AI generation is not available", nil)
		}
	}

	set, err := domain.NewFlashcardSet(owner, in.Name, in.Description, in.SourceText)
	if err != nil {
		return nil, err
	}

	if err := s.sets.Create(ctx, set); err != nil {
		log.Error("failed to create flashcard set",
			slog.String("error", err.Error()),
			slog.String("user_id", owner.String()))
		return nil, NewServiceError("flashcard_set", "create", err)
	}

	log.Info("flashcard set created",
		slog.String("set_id", set.ID.String()),
		slog.String("user_id", owner.String()),
		slog.Bool("generate_ai_cards", in.GenerateAICards))

	if in.GenerateAICards {
		if err := s.scheduler.ScheduleSetGeneration(ctx, owner, set.ID, count); err != nil {
			// The set exists; generation can be retried by the client.
			log.Error("failed to schedule set generation",
				slog.String("error", err.Error()),
				slog.String("set_id", set.ID.String()))
		}
	}

	return set, nil
}

// List implements FlashcardSetService.List
func (s *flashcardSetServiceImpl) List(
	ctx context.Context,
	owner uuid.UUID,
	params ListSetsParams,
) (Page[*domain.FlashcardSet], error) {
	lp := listParams{page: params.Page, limit: params.Limit, sortBy: params.SortBy, sortOrder: params.SortOrder}
	if err := lp.normalize(DefaultSetPageLimit, MaxSetPageLimit, SetSortFields); err != nil {
		return Page[*domain.FlashcardSet]{}, err
	}

	sets, total, err := s.sets.List(ctx, owner, store.SetListOptions{
		Page:      lp.page,
		Limit:     lp.limit,
		SortBy:    lp.sortBy,
		SortOrder: store.SortOrder(lp.sortOrder),
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list flashcard sets",
			slog.String("error", err.Error()),
			slog.String("user_id", owner.String()))
		return Page[*domain.FlashcardSet]{}, NewServiceError("flashcard_set", "list", err)
	}
	if sets == nil {
		sets = []*domain.FlashcardSet{}
	}

	return Page[*domain.FlashcardSet]{Items: sets, Total: total, Page: lp.page, Limit: lp.limit}, nil
}

// GetByID implements FlashcardSetService.GetByID
func (s *flashcardSetServiceImpl) GetByID(ctx context.Context, owner, setID uuid.UUID) (*domain.FlashcardSet, error) {
	set, err := s.sets.GetByID(ctx, owner, setID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get flashcard set",
				slog.String("error", err.Error()),
				slog.String("set_id", setID.String()))
		}
		return nil, NewServiceError("flashcard_set", "get", err)
	}
	return set, nil
}

// Update implements FlashcardSetService.Update
func (s *flashcardSetServiceImpl) Update(
	ctx context.Context,
	owner, setID uuid.UUID,
	in UpdateSetInput,
) (*domain.FlashcardSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.IsEmpty() {
		return nil, domain.NewValidationError("", "at least one field must be provided for update", nil)
	}
	if in.Name != nil {
		if err := domain.ValidateSetName(*in.Name); err != nil {
			return nil, err
		}
	}

	set, err := s.sets.GetByID(ctx, owner, setID)
	if err != nil {
		return nil, NewServiceError("flashcard_set", "update", err)
	}

	if in.Name != nil {
		set.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		set.Description = in.Description
	}
	if in.IsDeleted != nil {
		set.IsDeleted = *in.IsDeleted
	}
	set.UpdatedAt = time.Now().UTC()

	if err := s.sets.Update(ctx, set); err != nil {
		if !errors.Is(err, store.ErrFlashcardSetNotFound) {
			log.Error("failed to update flashcard set",
				slog.String("error", err.Error()),
				slog.String("set_id", setID.String()))
		}
		return nil, NewServiceError("flashcard_set", "update", err)
	}

	log.Info("flashcard set updated",
		slog.String("set_id", setID.String()),
		slog.Bool("deleted", set.IsDeleted))
	return set, nil
}

// RecordGenerationDuration implements FlashcardSetService.RecordGenerationDuration
func (s *flashcardSetServiceImpl) RecordGenerationDuration(ctx context.Context, owner, setID uuid.UUID, d time.Duration) error {
	if err := s.sets.SetGenerationDuration(ctx, owner, setID, d.Milliseconds()); err != nil {
		return NewServiceError("flashcard_set", "record_generation_duration", err)
	}
	return nil
}
