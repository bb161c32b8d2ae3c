package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// GenerateCardFn allows test cases to mock the GenerateCard behavior
	GenerateCardFn func(ctx context.Context, req generation.Request) (domain.GeneratedCard, error)

	// ListModelsFn allows test cases to mock the ListModels behavior
	ListModelsFn func(ctx context.Context) ([]generation.Model, error)

	// Default response values. Cards are returned in order, one per call,
	// cycling when exhausted.
	Cards     []domain.GeneratedCard
	Err       error
	Models    []generation.Model
	ModelName string

	mu sync.Mutex

	// Call tracking for verification
	GenerateCardCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times GenerateCard was called
		Count int

		// Requests contains all requests passed to GenerateCard calls
		Requests []generation.Request
	}
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateCard implements the generation.Generator interface
func (m *MockGenerator) GenerateCard(ctx context.Context, req generation.Request) (domain.GeneratedCard, error) {
	m.GenerateCardCalls.mu.Lock()
	call := m.GenerateCardCalls.Count
	m.GenerateCardCalls.Count++
	m.GenerateCardCalls.Requests = append(m.GenerateCardCalls.Requests, req)
	m.GenerateCardCalls.mu.Unlock()

	if m.GenerateCardFn != nil {
		return m.GenerateCardFn(ctx, req)
	}
	if m.Err != nil {
		return domain.GeneratedCard{}, m.Err
	}
	if len(m.Cards) == 0 {
		return domain.GeneratedCard{}, generation.NewProviderError("mock",
			domain.KindProviderGeneric, "no cards configured", nil)
	}
	return m.Cards[call%len(m.Cards)], nil
}

// ListModels implements the generation.Generator interface
func (m *MockGenerator) ListModels(ctx context.Context) ([]generation.Model, error) {
	if m.ListModelsFn != nil {
		return m.ListModelsFn(ctx)
	}
	return m.Models, m.Err
}

// SetModel implements the generation.Generator interface
func (m *MockGenerator) SetModel(name string) error {
	if name == "" {
		return generation.ErrInvalidConfig
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ModelName = name
	return nil
}

// Model implements the generation.Generator interface
func (m *MockGenerator) Model() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Calls returns how many times GenerateCard was called.
func (m *MockGenerator) Calls() int {
	m.GenerateCardCalls.mu.Lock()
	defer m.GenerateCardCalls.mu.Unlock()
	return m.GenerateCardCalls.Count
}

// NewMockGeneratorWithCards creates a MockGenerator that returns the specified cards
func NewMockGeneratorWithCards(cards ...domain.GeneratedCard) *MockGenerator {
	return &MockGenerator{Cards: cards}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// NewMockGeneratorWithUniqueCards creates a MockGenerator that returns a new
// numbered card on every call.
func NewMockGeneratorWithUniqueCards() *MockGenerator {
	m := &MockGenerator{}
	var n int
	var mu sync.Mutex
	m.GenerateCardFn = func(ctx context.Context, req generation.Request) (domain.GeneratedCard, error) {
		if err := ctx.Err(); err != nil {
			return domain.GeneratedCard{}, err
		}
		mu.Lock()
		defer mu.Unlock()
		n++
		return domain.GeneratedCard{
			Front: fmt.Sprintf("Question %d?", n),
			Back:  fmt.Sprintf("Answer %d.", n),
		}, nil
	}
	return m
}

// MockGeneratorWithProviderError creates a MockGenerator that fails every call
// with a provider error of the given kind.
func MockGeneratorWithProviderError(kind domain.Kind) *MockGenerator {
	return &MockGenerator{Err: generation.NewProviderError("mock", kind, "mock failure", nil)}
}

// Reset resets the call tracking state
func (m *MockGenerator) Reset() {
	m.GenerateCardCalls.mu.Lock()
	defer m.GenerateCardCalls.mu.Unlock()

	m.GenerateCardCalls.Count = 0
	m.GenerateCardCalls.Requests = nil
}
