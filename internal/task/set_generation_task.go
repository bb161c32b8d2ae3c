package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/service"
	"github.com/google/uuid"
)

// CardAccumulator runs the generation loop. *generation.Accumulator
// satisfies it.
type CardAccumulator interface {
	Run(ctx context.Context, req generation.RunRequest, onProgress generation.ProgressFunc) (generation.Result, error)
}

// SetGenerationPayload is the data a SetGenerationTask works on.
type SetGenerationPayload struct {
	UserID uuid.UUID `json:"user_id"`
	SetID  uuid.UUID `json:"set_id"`
	Count  int       `json:"count"`
}

// SetGenerationDeps are the collaborators of a SetGenerationTask.
type SetGenerationDeps struct {
	Sets        service.FlashcardSetService
	Cards       service.FlashcardService
	Accumulator CardAccumulator
	Logger      *slog.Logger
}

func (d SetGenerationDeps) validate() error {
	if d.Sets == nil || d.Cards == nil || d.Accumulator == nil {
		return errors.New("set generation requires set service, flashcard service and accumulator")
	}
	return nil
}

// SetGenerationTask generates AI flashcards for an existing set and stores
// them as ai_generated cards.
type SetGenerationTask struct {
	id      uuid.UUID
	payload SetGenerationPayload
	deps    SetGenerationDeps
	logger  *slog.Logger

	mu     sync.RWMutex
	status TaskStatus
}

var _ Task = (*SetGenerationTask)(nil)

// NewSetGenerationTask creates a pending task for the set.
func NewSetGenerationTask(payload SetGenerationPayload, deps SetGenerationDeps) (*SetGenerationTask, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if payload.UserID == uuid.Nil || payload.SetID == uuid.Nil {
		return nil, domain.NewValidationError("set_id", "user and set ids are required", nil)
	}
	if payload.Count < 1 || payload.Count > domain.MaxFlashcardsPerSet {
		return nil, domain.NewValidationError("count",
			fmt.Sprintf("must be between 1 and %d", domain.MaxFlashcardsPerSet), nil)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	return &SetGenerationTask{
		id:      id,
		payload: payload,
		deps:    deps,
		status:  TaskStatusPending,
		logger: logger.With(
			slog.String("component", "set_generation_task"),
			slog.String("task_id", id.String()),
			slog.String("set_id", payload.SetID.String())),
	}, nil
}

// ID implements Task.
func (t *SetGenerationTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *SetGenerationTask) Type() string { return TaskTypeSetGeneration }

// Payload implements Task.
func (t *SetGenerationTask) Payload() []byte {
	b, err := json.Marshal(t.payload)
	if err != nil {
		return nil
	}
	return b
}

// Status implements Task.
func (t *SetGenerationTask) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *SetGenerationTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute implements Task. The target is capped by the room left in the set
// when the task starts, and the store step keeps only the cards that still
// fit, so manual cards added during generation never push the set past the
// limit.
func (t *SetGenerationTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	if err := t.execute(ctx); err != nil {
		t.setStatus(TaskStatusFailed)
		return err
	}
	t.setStatus(TaskStatusCompleted)
	return nil
}

func (t *SetGenerationTask) execute(ctx context.Context) error {
	p := t.payload

	set, err := t.deps.Sets.GetByID(ctx, p.UserID, p.SetID)
	if err != nil {
		return fmt.Errorf("failed to load set: %w", err)
	}
	if set.SourceText == nil {
		return domain.ErrSourceTextMissing
	}

	remaining := domain.MaxFlashcardsPerSet - set.TotalCards()
	if remaining <= 0 {
		t.logger.Warn("set is full, skipping generation", slog.Int("cards", set.TotalCards()))
		return nil
	}
	target := min(p.Count, remaining)

	res, err := t.deps.Accumulator.Run(ctx, generation.RunRequest{
		SourceText: *set.SourceText,
		Target:     target,
	}, func(pr generation.Progress) {
		t.logger.Debug("generation progress", slog.Int("progress", pr.Progress))
	})
	if err != nil {
		return fmt.Errorf("generation interrupted after %d cards: %w", len(res.Cards), err)
	}
	if len(res.Cards) == 0 {
		if res.LastErr != nil {
			return fmt.Errorf("generation produced no cards: %w", res.LastErr)
		}
		return errors.New("generation produced no cards")
	}

	inputs := make([]service.CreateFlashcardInput, 0, len(res.Cards))
	for _, c := range res.Cards {
		inputs = append(inputs, service.CreateFlashcardInput{
			Question:     c.Front,
			Answer:       c.Back,
			CreationType: domain.CreationTypeAIGenerated,
		})
	}
	// Cards added while the loop ran may have taken some of the room.
	stored, err := t.deps.Cards.FillBatch(ctx, p.UserID, p.SetID, inputs)
	if err != nil {
		return fmt.Errorf("failed to store generated cards: %w", err)
	}

	if err := t.deps.Sets.RecordGenerationDuration(ctx, p.UserID, p.SetID, res.Duration); err != nil {
		return fmt.Errorf("failed to record generation duration: %w", err)
	}

	t.logger.Info("set generation finished",
		slog.Int("cards", len(stored)),
		slog.Int("generated", len(res.Cards)),
		slog.Int("target", target),
		slog.Int("attempts", res.Attempts),
		slog.Int("duplicates", res.Duplicates),
		slog.Int("failures", res.Failures),
		slog.Duration("duration", res.Duration))
	return nil
}
