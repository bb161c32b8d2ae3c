package service

import (
	"context"
	"database/sql"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockFlashcardSetStore mocks the store.FlashcardSetStore interface
type MockFlashcardSetStore struct {
	mock.Mock
}

func (m *MockFlashcardSetStore) Create(ctx context.Context, set *domain.FlashcardSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockFlashcardSetStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.FlashcardSet, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlashcardSet), args.Error(1)
}

func (m *MockFlashcardSetStore) List(
	ctx context.Context,
	userID uuid.UUID,
	opts store.SetListOptions,
) ([]*domain.FlashcardSet, int, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.FlashcardSet), args.Int(1), args.Error(2)
}

func (m *MockFlashcardSetStore) Update(ctx context.Context, set *domain.FlashcardSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockFlashcardSetStore) LockForUpdate(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockFlashcardSetStore) SetGenerationDuration(ctx context.Context, userID, id uuid.UUID, durationMs int64) error {
	args := m.Called(ctx, userID, id, durationMs)
	return args.Error(0)
}

func (m *MockFlashcardSetStore) WithTx(tx *sql.Tx) store.FlashcardSetStore {
	return m
}

// MockFlashcardStore mocks the store.FlashcardStore interface
type MockFlashcardStore struct {
	mock.Mock
}

func (m *MockFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockFlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockFlashcardStore) GetByID(ctx context.Context, setID, id uuid.UUID) (*domain.Flashcard, error) {
	args := m.Called(ctx, setID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) List(
	ctx context.Context,
	setID uuid.UUID,
	opts store.FlashcardListOptions,
) ([]*domain.Flashcard, int, error) {
	args := m.Called(ctx, setID, opts)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Flashcard), args.Int(1), args.Error(2)
}

func (m *MockFlashcardStore) CountActive(ctx context.Context, setID uuid.UUID) (int, error) {
	args := m.Called(ctx, setID)
	return args.Int(0), args.Error(1)
}

func (m *MockFlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockFlashcardStore) SoftDelete(ctx context.Context, setID, id uuid.UUID) error {
	args := m.Called(ctx, setID, id)
	return args.Error(0)
}

func (m *MockFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return m
}

// MockScheduler mocks the GenerationScheduler interface
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) ScheduleSetGeneration(ctx context.Context, userID, setID uuid.UUID, count int) error {
	args := m.Called(ctx, userID, setID, count)
	return args.Error(0)
}
