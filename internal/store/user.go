package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/google/uuid"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. The plaintext Password is hashed by the
	// implementation. Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword hashes and stores a new password for the user.
	// Returns ErrUserNotFound if the user does not exist.
	UpdatePassword(ctx context.Context, id uuid.UUID, password string) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}

// PasswordResetStore persists single-use password reset tokens.
type PasswordResetStore interface {
	// Create saves a new token.
	Create(ctx context.Context, token *domain.PasswordResetToken) error

	// Consume marks the unused, unexpired token with the given hash as used
	// and returns its owner. Returns ErrResetTokenNotFound otherwise.
	Consume(ctx context.Context, tokenHash string, now time.Time) (uuid.UUID, error)

	// WithTx returns a new PasswordResetStore that uses the provided transaction.
	WithTx(tx *sql.Tx) PasswordResetStore
}
