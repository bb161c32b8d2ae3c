package generation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultCallDelay is the pause between two provider calls.
	DefaultCallDelay = time.Second

	// ExtraAttempts is how many calls beyond the target a run may spend on
	// duplicates and failures.
	ExtraAttempts = 5

	tracerName = "github.com/Ketaiwk/10xcards/internal/generation"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Progress is reported after every accepted card.
type Progress struct {
	Card     domain.GeneratedCard `json:"card"`
	Count    int                  `json:"count"`
	Target   int                  `json:"target"`
	Progress int                  `json:"progress"`
}

// ProgressFunc receives progress updates. It is called from the goroutine
// running the accumulator.
type ProgressFunc func(Progress)

// RunRequest describes one accumulation run.
type RunRequest struct {
	SourceText string
	Target     int
	Options    Options
}

// Validate checks the source text length and the target count.
func (r RunRequest) Validate() error {
	if err := domain.ValidateSourceText(r.SourceText); err != nil {
		return err
	}
	if r.Target < 1 || r.Target > domain.MaxFlashcardsPerSet {
		return domain.NewValidationError("count",
			fmt.Sprintf("must be between 1 and %d", domain.MaxFlashcardsPerSet), nil)
	}
	return nil
}

// Result summarizes an accumulation run.
type Result struct {
	Cards      []domain.GeneratedCard
	Attempts   int
	Duplicates int
	Failures   int
	Duration   time.Duration
	// LastErr is the most recent provider error, if any call failed.
	LastErr error
}

// Accumulator calls a Generator repeatedly until it has collected the target
// number of unique cards or used up its attempts.
type Accumulator struct {
	gen    Generator
	delay  time.Duration
	sleep  Sleeper
	tracer trace.Tracer
	now    func() time.Time
	logger *slog.Logger
}

// AccumulatorOption configures an Accumulator.
type AccumulatorOption func(*Accumulator)

// WithDelay sets the pause between provider calls.
func WithDelay(d time.Duration) AccumulatorOption {
	return func(a *Accumulator) { a.delay = d }
}

// WithSleeper replaces the wait between calls, mainly for tests.
func WithSleeper(s Sleeper) AccumulatorOption {
	return func(a *Accumulator) { a.sleep = s }
}

// WithTracer sets the tracer used for run and attempt spans.
func WithTracer(t trace.Tracer) AccumulatorOption {
	return func(a *Accumulator) { a.tracer = t }
}

// WithClock sets the time source used to measure run duration.
func WithClock(now func() time.Time) AccumulatorOption {
	return func(a *Accumulator) { a.now = now }
}

// NewAccumulator creates an Accumulator around gen.
func NewAccumulator(gen Generator, logger *slog.Logger, opts ...AccumulatorOption) *Accumulator {
	if gen == nil {
		panic("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Accumulator{
		gen:    gen,
		delay:  DefaultCallDelay,
		sleep:  contextSleep,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
		logger: logger.With(slog.String("component", "generation_accumulator")),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generator returns the wrapped generator.
func (a *Accumulator) Generator() Generator { return a.gen }

// Run collects up to req.Target unique cards. At most req.Target+ExtraAttempts
// provider calls are made. A failed call is logged and counts as an attempt.
// If ctx is cancelled, Run returns the cards collected so far together with
// the context error. Invalid requests fail before any call is made.
func (a *Accumulator) Run(ctx context.Context, req RunRequest, onProgress ProgressFunc) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if _, err := req.Options.Resolve(a.gen.Model()); err != nil {
		return Result{}, err
	}

	ctx, span := a.tracer.Start(ctx, "generation.run", trace.WithAttributes(
		attribute.Int("generation.target", req.Target),
		attribute.Int("generation.source_length", len([]rune(req.SourceText))),
	))
	defer span.End()

	log := logger.FromContextOrDefault(ctx, a.logger)
	start := a.now()
	maxAttempts := req.Target + ExtraAttempts
	res := Result{Cards: make([]domain.GeneratedCard, 0, req.Target)}

	finish := func(err error) (Result, error) {
		res.Duration = a.now().Sub(start)
		span.SetAttributes(
			attribute.Int("generation.cards", len(res.Cards)),
			attribute.Int("generation.attempts", res.Attempts),
			attribute.Int("generation.duplicates", res.Duplicates),
			attribute.Int("generation.failures", res.Failures),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		log.Info("generation run finished",
			slog.Int("target", req.Target),
			slog.Int("cards", len(res.Cards)),
			slog.Int("attempts", res.Attempts),
			slog.Int("duplicates", res.Duplicates),
			slog.Int("failures", res.Failures),
			slog.Duration("duration", res.Duration))
		return res, err
	}

	for len(res.Cards) < req.Target && res.Attempts < maxAttempts {
		if res.Attempts > 0 {
			if err := a.sleep(ctx, a.delay); err != nil {
				return finish(err)
			}
		}
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		res.Attempts++
		card, err := a.attempt(ctx, req, res)
		if err != nil {
			if ctx.Err() != nil {
				return finish(ctx.Err())
			}
			res.Failures++
			res.LastErr = err
			log.Warn("generation attempt failed",
				slog.Int("attempt", res.Attempts),
				slog.String("error_kind", string(domain.KindOf(err))),
				slog.String("error", err.Error()))
			continue
		}

		if card.DuplicateOf(res.Cards) {
			res.Duplicates++
			log.Debug("duplicate card skipped", slog.Int("attempt", res.Attempts))
			continue
		}

		res.Cards = append(res.Cards, card)
		if onProgress != nil {
			onProgress(Progress{
				Card:     card,
				Count:    len(res.Cards),
				Target:   req.Target,
				Progress: ProgressPercent(len(res.Cards), req.Target),
			})
		}
	}

	if len(res.Cards) < req.Target {
		log.Warn("generation stopped before reaching target",
			slog.Int("target", req.Target),
			slog.Int("cards", len(res.Cards)))
	}
	return finish(nil)
}

func (a *Accumulator) attempt(ctx context.Context, req RunRequest, res Result) (domain.GeneratedCard, error) {
	ctx, span := a.tracer.Start(ctx, "generation.attempt",
		trace.WithAttributes(attribute.Int("generation.attempt", res.Attempts)))
	defer span.End()

	card, err := a.gen.GenerateCard(ctx, Request{
		SourceText: req.SourceText,
		Existing:   res.Cards,
		Options:    req.Options,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return card, err
}

// ProgressPercent returns count/target as a rounded percentage.
func ProgressPercent(count, target int) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(target) * 100))
}
