package store

import (
	"context"
	"database/sql"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/google/uuid"
)

// FlashcardListOptions controls paging, ordering and filtering of flashcard
// listings. SortBy must be one of created_at, updated_at, question or answer.
type FlashcardListOptions struct {
	Page         int
	Limit        int
	SortBy       string
	SortOrder    SortOrder
	CreationType *domain.CreationType
}

// Offset returns the row offset of the requested page.
func (o FlashcardListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// FlashcardStore defines the interface for flashcard persistence.
//
// Ownership of the parent set is checked by the caller through
// FlashcardSetStore; this store only scopes by set.
type FlashcardStore interface {
	// Create saves a single flashcard.
	Create(ctx context.Context, card *domain.Flashcard) error

	// CreateMultiple saves several flashcards. It MUST be run within a
	// transaction to be atomic:
	//
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return flashcardStore.WithTx(tx).CreateMultiple(ctx, cards)
	//   })
	CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a non-deleted flashcard of the given set.
	// Returns ErrFlashcardNotFound otherwise.
	GetByID(ctx context.Context, setID, id uuid.UUID) (*domain.Flashcard, error)

	// List returns one page of the set's non-deleted flashcards and the total.
	List(ctx context.Context, setID uuid.UUID, opts FlashcardListOptions) ([]*domain.Flashcard, int, error)

	// CountActive returns the number of non-deleted flashcards in the set.
	CountActive(ctx context.Context, setID uuid.UUID) (int, error)

	// Update writes question, answer, creation_type, is_deleted and
	// updated_at of a flashcard in the given set.
	Update(ctx context.Context, card *domain.Flashcard) error

	// SoftDelete marks the flashcard deleted. Deleting an already deleted
	// card succeeds; an unknown id or a card of another set returns
	// ErrFlashcardNotFound.
	SoftDelete(ctx context.Context, setID, id uuid.UUID) error

	// WithTx returns a new FlashcardStore that uses the provided transaction.
	WithTx(tx *sql.Tx) FlashcardStore
}
