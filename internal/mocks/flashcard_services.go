package mocks

import (
	"context"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/service"
	"github.com/google/uuid"
)

// MockFlashcardSetService implements service.FlashcardSetService for testing.
// Methods without an Fn field return not found.
type MockFlashcardSetService struct {
	CreateFn                   func(ctx context.Context, owner uuid.UUID, in service.CreateSetInput) (*domain.FlashcardSet, error)
	ListFn                     func(ctx context.Context, owner uuid.UUID, params service.ListSetsParams) (service.Page[*domain.FlashcardSet], error)
	GetByIDFn                  func(ctx context.Context, owner, setID uuid.UUID) (*domain.FlashcardSet, error)
	UpdateFn                   func(ctx context.Context, owner, setID uuid.UUID, in service.UpdateSetInput) (*domain.FlashcardSet, error)
	RecordGenerationDurationFn func(ctx context.Context, owner, setID uuid.UUID, d time.Duration) error
}

var _ service.FlashcardSetService = (*MockFlashcardSetService)(nil)

// Create implements service.FlashcardSetService.
func (m *MockFlashcardSetService) Create(ctx context.Context, owner uuid.UUID, in service.CreateSetInput) (*domain.FlashcardSet, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, owner, in)
	}
	return nil, domain.ErrNotFound
}

// List implements service.FlashcardSetService.
func (m *MockFlashcardSetService) List(ctx context.Context, owner uuid.UUID, params service.ListSetsParams) (service.Page[*domain.FlashcardSet], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, owner, params)
	}
	return service.Page[*domain.FlashcardSet]{}, nil
}

// GetByID implements service.FlashcardSetService.
func (m *MockFlashcardSetService) GetByID(ctx context.Context, owner, setID uuid.UUID) (*domain.FlashcardSet, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, owner, setID)
	}
	return nil, domain.ErrNotFound
}

// Update implements service.FlashcardSetService.
func (m *MockFlashcardSetService) Update(ctx context.Context, owner, setID uuid.UUID, in service.UpdateSetInput) (*domain.FlashcardSet, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, owner, setID, in)
	}
	return nil, domain.ErrNotFound
}

// RecordGenerationDuration implements service.FlashcardSetService.
func (m *MockFlashcardSetService) RecordGenerationDuration(ctx context.Context, owner, setID uuid.UUID, d time.Duration) error {
	if m.RecordGenerationDurationFn != nil {
		return m.RecordGenerationDurationFn(ctx, owner, setID, d)
	}
	return nil
}

// MockFlashcardService implements service.FlashcardService for testing.
// Methods without an Fn field return not found.
type MockFlashcardService struct {
	CreateFn      func(ctx context.Context, owner, setID uuid.UUID, in service.CreateFlashcardInput) (*domain.Flashcard, error)
	CreateBatchFn func(ctx context.Context, owner, setID uuid.UUID, in []service.CreateFlashcardInput) ([]*domain.Flashcard, error)
	FillBatchFn   func(ctx context.Context, owner, setID uuid.UUID, in []service.CreateFlashcardInput) ([]*domain.Flashcard, error)
	ListFn        func(ctx context.Context, owner, setID uuid.UUID, params service.ListFlashcardsParams) (service.Page[*domain.Flashcard], error)
	UpdateFn      func(ctx context.Context, owner, setID, id uuid.UUID, in service.UpdateFlashcardInput) (*domain.Flashcard, error)
	DeleteFn      func(ctx context.Context, owner, setID, id uuid.UUID) error
}

var _ service.FlashcardService = (*MockFlashcardService)(nil)

// Create implements service.FlashcardService.
func (m *MockFlashcardService) Create(ctx context.Context, owner, setID uuid.UUID, in service.CreateFlashcardInput) (*domain.Flashcard, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, owner, setID, in)
	}
	return nil, domain.ErrNotFound
}

// CreateBatch implements service.FlashcardService.
func (m *MockFlashcardService) CreateBatch(ctx context.Context, owner, setID uuid.UUID, in []service.CreateFlashcardInput) ([]*domain.Flashcard, error) {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, owner, setID, in)
	}
	return nil, domain.ErrNotFound
}

// FillBatch implements service.FlashcardService.
func (m *MockFlashcardService) FillBatch(ctx context.Context, owner, setID uuid.UUID, in []service.CreateFlashcardInput) ([]*domain.Flashcard, error) {
	if m.FillBatchFn != nil {
		return m.FillBatchFn(ctx, owner, setID, in)
	}
	return nil, domain.ErrNotFound
}

// List implements service.FlashcardService.
func (m *MockFlashcardService) List(ctx context.Context, owner, setID uuid.UUID, params service.ListFlashcardsParams) (service.Page[*domain.Flashcard], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, owner, setID, params)
	}
	return service.Page[*domain.Flashcard]{}, nil
}

// Update implements service.FlashcardService.
func (m *MockFlashcardService) Update(ctx context.Context, owner, setID, id uuid.UUID, in service.UpdateFlashcardInput) (*domain.Flashcard, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, owner, setID, id, in)
	}
	return nil, domain.ErrNotFound
}

// Delete implements service.FlashcardService.
func (m *MockFlashcardService) Delete(ctx context.Context, owner, setID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, owner, setID, id)
	}
	return domain.ErrNotFound
}
