package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Ketaiwk/10xcards/internal/api"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/redact"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultSaveConcurrency bounds the card creates in flight during Save.
const DefaultSaveConcurrency = 5

// ErrActionNotAllowed is returned when an effect is started from a phase
// that does not permit it.
var ErrActionNotAllowed = errors.New("action not allowed in the current phase")

// API is the server surface the controller talks to. HTTPClient
// implements it.
type API interface {
	Generate(ctx context.Context, req api.GenerationRequest, onEvent func(generation.Event)) error
	CreateSet(ctx context.Context, req api.CreateSetRequest) (*domain.FlashcardSet, error)
	CreateFlashcard(ctx context.Context, setID uuid.UUID, req api.CreateFlashcardRequest) (*domain.Flashcard, error)
	UpdateFlashcard(ctx context.Context, setID, id uuid.UUID, req api.UpdateFlashcardRequest) (*domain.Flashcard, error)
	DeleteFlashcard(ctx context.Context, setID, id uuid.UUID) error
}

// PartialSaveError reports cards that could not be created after the set
// itself was saved. Nothing is rolled back.
type PartialSaveError struct {
	SetID  uuid.UUID
	Failed int
	Total  int
	Err    error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("%d of %d flashcards could not be saved: %v", e.Failed, e.Total, e.Err)
}

func (e *PartialSaveError) Unwrap() error {
	return e.Err
}

// GenerateOptions are the per-run generation settings.
type GenerateOptions struct {
	Count int
	Model string
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithObserver registers a function called with every new state.
func WithObserver(fn func(State)) ControllerOption {
	return func(c *Controller) {
		c.observer = fn
	}
}

// WithSaveConcurrency sets how many card creates Save runs at once.
func WithSaveConcurrency(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.saveConcurrency = n
		}
	}
}

// Controller runs the side effects of the set creation flow and feeds their
// outcomes to Reduce. It is safe for concurrent use.
type Controller struct {
	api             API
	logger          *slog.Logger
	observer        func(State)
	saveConcurrency int

	mu    sync.Mutex
	state State
}

// NewController creates a Controller in the initial state.
func NewController(client API, logger *slog.Logger, opts ...ControllerOption) *Controller {
	if client == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("api client cannot be nil for Controller")
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		api:             client,
		logger:          logger.With(slog.String("component", "client_controller")),
		saveConcurrency: DefaultSaveConcurrency,
		state:           NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a to the current state and returns the result.
func (c *Controller) Dispatch(a Action) State {
	_, next := c.apply(a)
	return next
}

// begin dispatches a and reports whether it moved the state into phase.
func (c *Controller) begin(a Action, phase Phase) (State, error) {
	prev, next := c.apply(a)
	if prev.Phase == phase || next.Phase != phase {
		return next, rejected(next)
	}
	return next, nil
}

func (c *Controller) apply(a Action) (State, State) {
	c.mu.Lock()
	prev := c.state
	c.state = Reduce(c.state, a)
	next := c.state
	c.mu.Unlock()

	if next.Phase != prev.Phase {
		c.logger.Debug("phase changed",
			slog.String("from", string(prev.Phase)),
			slog.String("to", string(next.Phase)))
	}
	if c.observer != nil {
		c.observer(next)
	}
	return prev, next
}

// Generate streams cards for the current source text into the state. The
// state ends in reviewing, or in error when the run failed.
func (c *Controller) Generate(ctx context.Context, opts GenerateOptions) error {
	st, err := c.begin(GenerationStarted{}, PhaseGenerating)
	if err != nil {
		return err
	}

	req := api.GenerationRequest{
		SourceText: st.SourceText,
		Count:      opts.Count,
		Model:      opts.Model,
	}
	err = c.api.Generate(ctx, req, func(ev generation.Event) {
		switch ev.Type {
		case generation.EventProgress:
			if ev.Card != nil {
				c.Dispatch(CardGenerated{Progress: ev.Progress, Card: *ev.Card})
			}
		case generation.EventDone:
			c.Dispatch(GenerationFinished{})
		}
	})
	if err != nil {
		c.logger.Warn("generation failed", slog.String("error", redact.Error(err)))
		c.Dispatch(GenerationFailed{Err: err})
		return err
	}
	if c.State().Phase == PhaseGenerating {
		c.Dispatch(GenerationFinished{})
	}
	return nil
}

// Save creates the set and then every card under review. The card creates
// run concurrently and are all awaited before the state becomes saved. When
// some of them fail the set stays saved and a *PartialSaveError is returned.
func (c *Controller) Save(ctx context.Context) (*domain.FlashcardSet, error) {
	st, err := c.begin(SaveStarted{}, PhaseSaving)
	if err != nil {
		return nil, err
	}

	set, err := c.api.CreateSet(ctx, setRequest(st))
	if err != nil {
		c.logger.Warn("set create failed", slog.String("error", redact.Error(err)))
		c.Dispatch(SaveFailed{Err: err})
		return nil, err
	}

	var (
		g        errgroup.Group
		failed   atomic.Int32
		firstErr error
		errOnce  sync.Once
	)
	g.SetLimit(c.saveConcurrency)
	for _, card := range st.Cards {
		g.Go(func() error {
			_, err := c.api.CreateFlashcard(ctx, set.ID, api.CreateFlashcardRequest{
				Question:     card.Question,
				Answer:       card.Answer,
				CreationType: string(card.CreationType),
			})
			if err != nil {
				failed.Add(1)
				errOnce.Do(func() { firstErr = err })
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := int(failed.Load()); n > 0 {
		perr := &PartialSaveError{SetID: set.ID, Failed: n, Total: len(st.Cards), Err: firstErr}
		c.logger.Warn("flashcards not saved",
			slog.String("set_id", set.ID.String()),
			slog.Int("failed", n),
			slog.Int("total", len(st.Cards)),
			slog.String("error", redact.Error(firstErr)))
		c.Dispatch(SaveSucceeded{Set: set, Err: perr})
		return set, perr
	}

	c.logger.Info("set saved",
		slog.String("set_id", set.ID.String()),
		slog.Int("cards", len(st.Cards)))
	c.Dispatch(SaveSucceeded{Set: set})
	return set, nil
}

// UpdateCard changes the content of a saved card. Editing an AI generated
// card marks it as edited.
func (c *Controller) UpdateCard(
	ctx context.Context,
	card *domain.Flashcard,
	question, answer string,
) (*domain.Flashcard, error) {
	if err := validateContent(question, answer); err != nil {
		return nil, err
	}
	req := api.UpdateFlashcardRequest{Question: &question, Answer: &answer}
	if card.CreationType == domain.CreationTypeAIGenerated {
		edited := string(domain.CreationTypeAIEdited)
		req.CreationType = &edited
	}
	return c.api.UpdateFlashcard(ctx, card.SetID, card.ID, req)
}

// DeleteCard removes a saved card.
func (c *Controller) DeleteCard(ctx context.Context, setID, id uuid.UUID) error {
	return c.api.DeleteFlashcard(ctx, setID, id)
}

func setRequest(st State) api.CreateSetRequest {
	req := api.CreateSetRequest{Name: strings.TrimSpace(st.Name)}
	if st.Description != "" {
		desc := st.Description
		req.Description = &desc
	}
	// The source text is stored only for sets that used it.
	if st.SourceText != "" && st.Counts().Manual < len(st.Cards) {
		src := st.SourceText
		req.SourceText = &src
	}
	return req
}

// rejected explains why an effect did not start.
func rejected(st State) error {
	if st.Error != nil && st.Error.Kind == domain.KindValidation &&
		(st.Phase == PhaseIdle || st.Phase == PhaseReviewing) {
		return &domain.Error{Kind: st.Error.Kind, Message: st.Error.Message}
	}
	return fmt.Errorf("%w: %s", ErrActionNotAllowed, st.Phase)
}
