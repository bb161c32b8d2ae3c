package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/google/uuid"
)

// setSortColumns whitelists the columns a set listing may be ordered by.
var setSortColumns = map[string]string{
	"created_at": "s.created_at",
	"updated_at": "s.updated_at",
	"name":       "s.name",
}

// setCountColumns derives the per-type counters from the non-deleted
// flashcards joined to the set.
const setCountColumns = `
	COUNT(f.id) FILTER (WHERE f.creation_type = 'manual'),
	COUNT(f.id) FILTER (WHERE f.creation_type = 'ai_generated'),
	COUNT(f.id) FILTER (WHERE f.creation_type = 'ai_edited')`

// PostgresFlashcardSetStore implements the store.FlashcardSetStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardSetStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardSetStore creates a new PostgreSQL implementation of the
// FlashcardSetStore interface. If logger is nil, a default logger will be used.
func NewPostgresFlashcardSetStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardSetStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardSetStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_set_store")),
	}
}

// Ensure PostgresFlashcardSetStore implements store.FlashcardSetStore interface
var _ store.FlashcardSetStore = (*PostgresFlashcardSetStore)(nil)

// WithTx implements store.FlashcardSetStore.WithTx
func (s *PostgresFlashcardSetStore) WithTx(tx *sql.Tx) store.FlashcardSetStore {
	return &PostgresFlashcardSetStore{db: tx, logger: s.logger}
}

// Create implements store.FlashcardSetStore.Create
func (s *PostgresFlashcardSetStore) Create(ctx context.Context, set *domain.FlashcardSet) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := set.Validate(); err != nil {
		log.Warn("flashcard set validation failed during create",
			slog.String("error", err.Error()),
			slog.String("set_id", set.ID.String()))
		return err
	}

	query := `
		INSERT INTO flashcard_sets (id, user_id, name, description, source_text,
			generation_duration_ms, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		set.ID,
		set.UserID,
		set.Name,
		nullString(set.Description),
		nullString(set.SourceText),
		set.GenerationDuration,
		set.IsDeleted,
		set.CreatedAt,
		set.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create flashcard set",
			slog.String("error", err.Error()),
			slog.String("set_id", set.ID.String()),
			slog.String("user_id", set.UserID.String()))
		return MapError(err)
	}

	log.Info("flashcard set created",
		slog.String("set_id", set.ID.String()),
		slog.String("user_id", set.UserID.String()))
	return nil
}

// GetByID implements store.FlashcardSetStore.GetByID
func (s *PostgresFlashcardSetStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.FlashcardSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT s.id, s.user_id, s.name, s.description, s.source_text,
			s.generation_duration_ms, s.created_at, s.updated_at,` + setCountColumns + `
		FROM flashcard_sets s
		LEFT JOIN flashcards f ON f.set_id = s.id AND NOT f.is_deleted
		WHERE s.id = $1 AND s.user_id = $2 AND NOT s.is_deleted
		GROUP BY s.id
	`

	var (
		set         domain.FlashcardSet
		description sql.NullString
		sourceText  sql.NullString
		counts      domain.CreationCounts
	)
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&set.ID,
		&set.UserID,
		&set.Name,
		&description,
		&sourceText,
		&set.GenerationDuration,
		&set.CreatedAt,
		&set.UpdatedAt,
		&counts.Manual,
		&counts.AIGenerated,
		&counts.AIEdited,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard set not found", slog.String("set_id", id.String()))
			return nil, store.ErrFlashcardSetNotFound
		}
		log.Error("failed to get flashcard set",
			slog.String("error", err.Error()),
			slog.String("set_id", id.String()))
		return nil, MapError(err)
	}

	set.Description = stringPtr(description)
	set.SourceText = stringPtr(sourceText)
	set.ApplyCounts(counts)
	return &set, nil
}

// List implements store.FlashcardSetStore.List
func (s *PostgresFlashcardSetStore) List(
	ctx context.Context,
	userID uuid.UUID,
	opts store.SetListOptions,
) ([]*domain.FlashcardSet, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	orderBy, err := orderClause(setSortColumns, opts.SortBy, opts.SortOrder, "s.id")
	if err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM flashcard_sets WHERE user_id = $1 AND NOT is_deleted`
	if err := s.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		log.Error("failed to count flashcard sets",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}

	query := `
		SELECT s.id, s.user_id, s.name, s.description,
			s.generation_duration_ms, s.created_at, s.updated_at,` + setCountColumns + `
		FROM flashcard_sets s
		LEFT JOIN flashcards f ON f.set_id = s.id AND NOT f.is_deleted
		WHERE s.user_id = $1 AND NOT s.is_deleted
		GROUP BY s.id
		` + orderBy + `
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, opts.Limit, opts.Offset())
	if err != nil {
		log.Error("failed to list flashcard sets",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	sets := make([]*domain.FlashcardSet, 0, opts.Limit)
	for rows.Next() {
		var (
			set         domain.FlashcardSet
			description sql.NullString
			counts      domain.CreationCounts
		)
		if err := rows.Scan(
			&set.ID,
			&set.UserID,
			&set.Name,
			&description,
			&set.GenerationDuration,
			&set.CreatedAt,
			&set.UpdatedAt,
			&counts.Manual,
			&counts.AIGenerated,
			&counts.AIEdited,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan flashcard set: %w", err)
		}
		set.Description = stringPtr(description)
		set.ApplyCounts(counts)
		sets = append(sets, &set)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate flashcard sets: %w", err)
	}

	log.Debug("listed flashcard sets",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(sets)),
		slog.Int("total", total))
	return sets, total, nil
}

// Update implements store.FlashcardSetStore.Update
func (s *PostgresFlashcardSetStore) Update(ctx context.Context, set *domain.FlashcardSet) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateSetName(set.Name); err != nil {
		return err
	}

	query := `
		UPDATE flashcard_sets
		SET name = $1, description = $2, is_deleted = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6 AND NOT is_deleted
	`
	result, err := s.db.ExecContext(ctx, query,
		set.Name,
		nullString(set.Description),
		set.IsDeleted,
		set.UpdatedAt,
		set.ID,
		set.UserID,
	)
	if err != nil {
		log.Error("failed to update flashcard set",
			slog.String("error", err.Error()),
			slog.String("set_id", set.ID.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrFlashcardSetNotFound); err != nil {
		return err
	}

	log.Info("flashcard set updated",
		slog.String("set_id", set.ID.String()),
		slog.Bool("is_deleted", set.IsDeleted))
	return nil
}

// LockForUpdate implements store.FlashcardSetStore.LockForUpdate
func (s *PostgresFlashcardSetStore) LockForUpdate(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		SELECT id FROM flashcard_sets
		WHERE id = $1 AND user_id = $2 AND NOT is_deleted
		FOR UPDATE
	`
	var locked uuid.UUID
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrFlashcardSetNotFound
	}
	return MapError(err)
}

// SetGenerationDuration implements store.FlashcardSetStore.SetGenerationDuration
func (s *PostgresFlashcardSetStore) SetGenerationDuration(ctx context.Context, userID, id uuid.UUID, durationMs int64) error {
	query := `
		UPDATE flashcard_sets SET generation_duration_ms = $1
		WHERE id = $2 AND user_id = $3 AND NOT is_deleted
	`
	result, err := s.db.ExecContext(ctx, query, durationMs, id, userID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrFlashcardSetNotFound)
}

// orderClause builds an ORDER BY clause from whitelisted columns. The
// tiebreak column keeps paging stable when sort values collide.
func orderClause(columns map[string]string, sortBy string, order store.SortOrder, tiebreak string) (string, error) {
	col, ok := columns[sortBy]
	if !ok {
		return "", fmt.Errorf("%w: unsupported sort column %q", store.ErrInvalidEntity, sortBy)
	}
	dir := "DESC"
	switch order {
	case store.SortAsc:
		dir = "ASC"
	case store.SortDesc, "":
	default:
		return "", fmt.Errorf("%w: unsupported sort order %q", store.ErrInvalidEntity, order)
	}
	return fmt.Sprintf("ORDER BY %s %s, %s %s", col, dir, tiebreak, dir), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
