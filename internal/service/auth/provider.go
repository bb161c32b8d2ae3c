package auth

import (
	"context"
	"time"

	"github.com/Ketaiwk/10xcards/internal/domain"
)

// TokenPair is returned by a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// RegisterInput holds the data needed to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Provider is the authentication boundary of the API. Implementations either
// manage users locally or delegate to a hosted auth service.
type Provider interface {
	// Register creates a new account.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Login exchanges credentials for a token pair.
	Login(ctx context.Context, email, password string) (*TokenPair, error)

	// Logout revokes the access token.
	Logout(ctx context.Context, accessToken string) error

	// Refresh exchanges a refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// ForgotPassword starts a password reset. It succeeds for unknown emails
	// so that accounts cannot be enumerated.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword sets a new password using a reset token.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// Authenticate validates an access token and returns its claims.
	Authenticate(ctx context.Context, accessToken string) (*Claims, error)
}
