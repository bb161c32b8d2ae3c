package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/google/uuid"
)

// PostgresResetTokenStore implements store.PasswordResetStore.
type PostgresResetTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresResetTokenStore creates a PostgreSQL password reset token store.
func NewPostgresResetTokenStore(db store.DBTX, logger *slog.Logger) *PostgresResetTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresResetTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "reset_token_store")),
	}
}

var _ store.PasswordResetStore = (*PostgresResetTokenStore)(nil)

// WithTx implements store.PasswordResetStore.WithTx
func (s *PostgresResetTokenStore) WithTx(tx *sql.Tx) store.PasswordResetStore {
	return &PostgresResetTokenStore{db: tx, logger: s.logger}
}

// Create implements store.PasswordResetStore.Create
func (s *PostgresResetTokenStore) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	return MapError(err)
}

// Consume implements store.PasswordResetStore.Consume
func (s *PostgresResetTokenStore) Consume(ctx context.Context, tokenHash string, now time.Time) (uuid.UUID, error) {
	query := `
		UPDATE password_reset_tokens
		SET used_at = $2
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING user_id
	`
	var userID uuid.UUID
	err := s.db.QueryRowContext(ctx, query, tokenHash, now.UTC()).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, store.ErrResetTokenNotFound
		}
		return uuid.Nil, MapError(err)
	}
	return userID, nil
}
