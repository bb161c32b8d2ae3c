package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultResetTokenLifetime is how long a password reset token stays valid.
const DefaultResetTokenLifetime = time.Hour

// ErrResetTokenInvalid is returned for unknown, used or expired reset tokens.
var ErrResetTokenInvalid = NewValidationError("token", "invalid or expired reset token", nil)

// PasswordResetToken is a single-use credential for resetting a password.
// Only the hash of the token is stored.
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// NewPasswordResetToken creates a token record valid for lifetime from now.
func NewPasswordResetToken(userID uuid.UUID, tokenHash string, now time.Time, lifetime time.Duration) *PasswordResetToken {
	return &PasswordResetToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(lifetime).UTC(),
		CreatedAt: now.UTC(),
	}
}

// Usable reports whether the token has not been used and has not expired.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
