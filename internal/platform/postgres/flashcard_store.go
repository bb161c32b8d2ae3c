package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/google/uuid"
)

var flashcardSortColumns = map[string]string{
	"created_at": "f.created_at",
	"updated_at": "f.updated_at",
	"question":   "f.question",
	"answer":     "f.answer",
}

// activeSetCondition hides flashcards whose set has been soft-deleted.
const activeSetCondition = `EXISTS (SELECT 1 FROM flashcard_sets s WHERE s.id = f.set_id AND NOT s.is_deleted)`

// PostgresFlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of the
// FlashcardStore interface. If logger is nil, a default logger will be used.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// WithTx implements store.FlashcardStore.WithTx
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{db: tx, logger: s.logger, now: s.now}
}

const insertFlashcardQuery = `
	INSERT INTO flashcards (id, set_id, question, answer, creation_type, is_deleted, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// Create implements store.FlashcardStore.Create
func (s *PostgresFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during create",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	if _, err := s.db.ExecContext(ctx, insertFlashcardQuery, flashcardArgs(card)...); err != nil {
		log.Error("failed to create flashcard",
			slog.String("error", err.Error()),
			slog.String("set_id", card.SetID.String()))
		return MapError(err)
	}

	log.Debug("flashcard created",
		slog.String("flashcard_id", card.ID.String()),
		slog.String("set_id", card.SetID.String()),
		slog.String("creation_type", string(card.CreationType)))
	return nil
}

// CreateMultiple implements store.FlashcardStore.CreateMultiple
func (s *PostgresFlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("flashcard validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", card.ID.String()))
			return err
		}
	}

	stmt, err := s.db.PrepareContext(ctx, insertFlashcardQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare flashcard insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, card := range cards {
		if _, err := stmt.ExecContext(ctx, flashcardArgs(card)...); err != nil {
			log.Error("failed to insert flashcard in batch",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", card.ID.String()))
			return MapError(err)
		}
	}

	log.Info("flashcards created",
		slog.String("set_id", cards[0].SetID.String()),
		slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID
func (s *PostgresFlashcardStore) GetByID(ctx context.Context, setID, id uuid.UUID) (*domain.Flashcard, error) {
	query := `
		SELECT f.id, f.set_id, f.question, f.answer, f.creation_type, f.is_deleted, f.created_at, f.updated_at
		FROM flashcards f
		WHERE f.id = $1 AND f.set_id = $2 AND NOT f.is_deleted AND ` + activeSetCondition

	card, err := scanFlashcard(s.db.QueryRowContext(ctx, query, id, setID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFlashcardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return nil, MapError(err)
	}
	return card, nil
}

// List implements store.FlashcardStore.List
func (s *PostgresFlashcardStore) List(
	ctx context.Context,
	setID uuid.UUID,
	opts store.FlashcardListOptions,
) ([]*domain.Flashcard, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	orderBy, err := orderClause(flashcardSortColumns, opts.SortBy, opts.SortOrder, "f.id")
	if err != nil {
		return nil, 0, err
	}

	where := `f.set_id = $1 AND NOT f.is_deleted AND ` + activeSetCondition
	args := []any{setID}
	if opts.CreationType != nil {
		args = append(args, string(*opts.CreationType))
		where += fmt.Sprintf(" AND f.creation_type = $%d", len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flashcards f WHERE `+where, args...).Scan(&total); err != nil {
		log.Error("failed to count flashcards",
			slog.String("error", err.Error()),
			slog.String("set_id", setID.String()))
		return nil, 0, MapError(err)
	}

	query := fmt.Sprintf(`
		SELECT f.id, f.set_id, f.question, f.answer, f.creation_type, f.is_deleted, f.created_at, f.updated_at
		FROM flashcards f
		WHERE %s
		%s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list flashcards",
			slog.String("error", err.Error()),
			slog.String("set_id", setID.String()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Flashcard, 0, opts.Limit)
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan flashcard: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate flashcards: %w", err)
	}
	return cards, total, nil
}

// CountActive implements store.FlashcardStore.CountActive
func (s *PostgresFlashcardStore) CountActive(ctx context.Context, setID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flashcards WHERE set_id = $1 AND NOT is_deleted`, setID).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// Update implements store.FlashcardStore.Update
func (s *PostgresFlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE flashcards
		SET question = $1, answer = $2, creation_type = $3, is_deleted = $4, updated_at = $5
		WHERE id = $6 AND set_id = $7 AND NOT is_deleted
	`
	result, err := s.db.ExecContext(ctx, query,
		card.Question,
		card.Answer,
		string(card.CreationType),
		card.IsDeleted,
		card.UpdatedAt,
		card.ID,
		card.SetID,
	)
	if err != nil {
		log.Error("failed to update flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrFlashcardNotFound); err != nil {
		return err
	}

	log.Debug("flashcard updated",
		slog.String("flashcard_id", card.ID.String()),
		slog.String("creation_type", string(card.CreationType)))
	return nil
}

// SoftDelete implements store.FlashcardStore.SoftDelete
//
// The row matches whether or not it is already deleted, so repeating the
// call is a no-op rather than ErrFlashcardNotFound.
func (s *PostgresFlashcardStore) SoftDelete(ctx context.Context, setID, id uuid.UUID) error {
	query := `
		UPDATE flashcards
		SET is_deleted = TRUE,
			updated_at = CASE WHEN is_deleted THEN updated_at ELSE $3 END
		WHERE id = $1 AND set_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, id, setID, s.now())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrFlashcardNotFound)
}

func flashcardArgs(card *domain.Flashcard) []any {
	return []any{
		card.ID,
		card.SetID,
		card.Question,
		card.Answer,
		string(card.CreationType),
		card.IsDeleted,
		card.CreatedAt,
		card.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(row rowScanner) (*domain.Flashcard, error) {
	var (
		card         domain.Flashcard
		creationType string
	)
	if err := row.Scan(
		&card.ID,
		&card.SetID,
		&card.Question,
		&card.Answer,
		&creationType,
		&card.IsDeleted,
		&card.CreatedAt,
		&card.UpdatedAt,
	); err != nil {
		return nil, err
	}
	card.CreationType = domain.CreationType(creationType)
	return &card, nil
}
