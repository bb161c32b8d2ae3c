package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/sony/gobreaker"
)

// BreakerSettings configure the circuit breaker around a Generator.
type BreakerSettings struct {
	Name string
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// BreakerGenerator wraps a Generator with a circuit breaker so that a failing
// provider is not called for every attempt of every run.
type BreakerGenerator struct {
	Generator
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerGenerator wraps next with a circuit breaker.
func NewBreakerGenerator(next Generator, s BreakerSettings, logger *slog.Logger) *BreakerGenerator {
	if next == nil {
		panic("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if s.Name == "" {
		s.Name = "llm"
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	log := logger.With(slog.String("component", "generation_breaker"))

	maxFailures := s.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &BreakerGenerator{Generator: next, cb: cb, logger: log}
}

// countsAsSuccess keeps malformed cards and cancelled requests from tripping
// the breaker; they say nothing about provider health.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return domain.KindOf(err) == domain.KindProviderValidation
}

// GenerateCard implements Generator.
func (b *BreakerGenerator) GenerateCard(ctx context.Context, req Request) (domain.GeneratedCard, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.Generator.GenerateCard(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.GeneratedCard{}, NewProviderError(b.cb.Name(), domain.KindProviderGeneric,
				"provider temporarily unavailable", err)
		}
		return domain.GeneratedCard{}, err
	}
	return out.(domain.GeneratedCard), nil
}

// State returns the current breaker state.
func (b *BreakerGenerator) State() gobreaker.State {
	return b.cb.State()
}
