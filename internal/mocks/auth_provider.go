package mocks

import (
	"context"
	"sync"

	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/service/auth"
	"github.com/google/uuid"
)

// MockAuthProvider implements auth.Provider for testing. Each method calls its
// Fn field when set and otherwise returns the default values.
type MockAuthProvider struct {
	RegisterFn       func(ctx context.Context, in auth.RegisterInput) (*domain.User, error)
	LoginFn          func(ctx context.Context, email, password string) (*auth.TokenPair, error)
	LogoutFn         func(ctx context.Context, accessToken string) error
	RefreshFn        func(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	ForgotPasswordFn func(ctx context.Context, email string) error
	ResetPasswordFn  func(ctx context.Context, token, newPassword string) error
	AuthenticateFn   func(ctx context.Context, accessToken string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	User   *domain.User
	Pair   *auth.TokenPair
	Claims *auth.Claims
	Err    error

	mu    sync.Mutex
	calls map[string]int
}

var _ auth.Provider = (*MockAuthProvider)(nil)

// NewMockAuthProviderForUser returns a provider that authenticates every
// non-empty token as the given user.
func NewMockAuthProviderForUser(userID uuid.UUID) *MockAuthProvider {
	return &MockAuthProvider{
		AuthenticateFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token == "" {
				return nil, auth.ErrMissingToken
			}
			return &auth.Claims{UserID: userID, Subject: userID.String(), TokenType: auth.TokenTypeAccess, ID: token}, nil
		},
	}
}

func (m *MockAuthProvider) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// CallCount returns how often the named method was called.
func (m *MockAuthProvider) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// Register implements auth.Provider.
func (m *MockAuthProvider) Register(ctx context.Context, in auth.RegisterInput) (*domain.User, error) {
	m.record("Register")
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, in)
	}
	return m.User, m.Err
}

// Login implements auth.Provider.
func (m *MockAuthProvider) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	m.record("Login")
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}
	return m.Pair, m.Err
}

// Logout implements auth.Provider.
func (m *MockAuthProvider) Logout(ctx context.Context, accessToken string) error {
	m.record("Logout")
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, accessToken)
	}
	return m.Err
}

// Refresh implements auth.Provider.
func (m *MockAuthProvider) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	m.record("Refresh")
	if m.RefreshFn != nil {
		return m.RefreshFn(ctx, refreshToken)
	}
	return m.Pair, m.Err
}

// ForgotPassword implements auth.Provider.
func (m *MockAuthProvider) ForgotPassword(ctx context.Context, email string) error {
	m.record("ForgotPassword")
	if m.ForgotPasswordFn != nil {
		return m.ForgotPasswordFn(ctx, email)
	}
	return m.Err
}

// ResetPassword implements auth.Provider.
func (m *MockAuthProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	m.record("ResetPassword")
	if m.ResetPasswordFn != nil {
		return m.ResetPasswordFn(ctx, token, newPassword)
	}
	return m.Err
}

// Authenticate implements auth.Provider.
func (m *MockAuthProvider) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	m.record("Authenticate")
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, accessToken)
	}
	return m.Claims, m.Err
}
