package store

import (
	"context"
	"database/sql"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/google/uuid"
)

// SortOrder is the direction of a list query.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SetListOptions controls paging and ordering of set listings. SortBy must be
// one of created_at, updated_at or name; implementations reject anything else.
type SetListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
}

// Offset returns the row offset of the requested page.
func (o SetListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// FlashcardSetStore defines the interface for flashcard set persistence.
//
// Every read excludes soft-deleted sets and is scoped to the owning user, so
// a set that is missing, deleted or owned by someone else is indistinguishable
// and reported as ErrFlashcardSetNotFound. Returned sets carry counters
// derived from their non-deleted flashcards.
type FlashcardSetStore interface {
	// Create saves a new set.
	Create(ctx context.Context, set *domain.FlashcardSet) error

	// GetByID retrieves a set owned by userID, including its source text.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.FlashcardSet, error)

	// List returns one page of the user's sets without source text,
	// together with the total number of matching sets.
	List(ctx context.Context, userID uuid.UUID, opts SetListOptions) ([]*domain.FlashcardSet, int, error)

	// Update writes name, description, is_deleted and updated_at.
	Update(ctx context.Context, set *domain.FlashcardSet) error

	// LockForUpdate takes a row lock on the set for the rest of the current
	// transaction. It MUST be called on a store bound with WithTx.
	LockForUpdate(ctx context.Context, userID, id uuid.UUID) error

	// SetGenerationDuration records how long AI generation took for the set.
	SetGenerationDuration(ctx context.Context, userID, id uuid.UUID, durationMs int64) error

	// WithTx returns a new FlashcardSetStore that uses the provided transaction.
	WithTx(tx *sql.Tx) FlashcardSetStore
}
