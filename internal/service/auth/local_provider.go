package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/Ketaiwk/10xcards/internal/config"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/platform/logger"
	"github.com/Ketaiwk/10xcards/internal/store"
)

// LocalProvider manages accounts in the application database and issues its
// own HS256 tokens.
type LocalProvider struct {
	db            *sql.DB
	users         store.UserStore
	resets        store.PasswordResetStore
	jwt           JWTService
	verifier      PasswordVerifier
	denylist      Denylist
	resetLifetime time.Duration
	resetURL      string
	now           func() time.Time
	logger        *slog.Logger
}

var _ Provider = (*LocalProvider)(nil)

// LocalProviderDeps are the collaborators of a LocalProvider.
type LocalProviderDeps struct {
	DB       *sql.DB
	Users    store.UserStore
	Resets   store.PasswordResetStore
	JWT      JWTService
	Verifier PasswordVerifier
	Denylist Denylist
}

// NewLocalProvider creates a LocalProvider. A nil Verifier defaults to bcrypt
// and a nil Denylist to an in-memory one.
func NewLocalProvider(cfg config.AuthConfig, deps LocalProviderDeps, logger *slog.Logger) (*LocalProvider, error) {
	if deps.DB == nil || deps.Users == nil || deps.Resets == nil || deps.JWT == nil {
		return nil, errors.New("local auth provider requires db, user store, reset store and jwt service")
	}
	if deps.Verifier == nil {
		deps.Verifier = NewBcryptVerifier()
	}
	if deps.Denylist == nil {
		deps.Denylist = NewMemoryDenylist()
	}
	if logger == nil {
		logger = slog.Default()
	}
	lifetime := cfg.ResetTokenLifetime
	if lifetime <= 0 {
		lifetime = domain.DefaultResetTokenLifetime
	}

	return &LocalProvider{
		db:            deps.DB,
		users:         deps.Users,
		resets:        deps.Resets,
		jwt:           deps.JWT,
		verifier:      deps.Verifier,
		denylist:      deps.Denylist,
		resetLifetime: lifetime,
		resetURL:      cfg.ResetURL,
		now:           time.Now,
		logger:        logger.With(slog.String("component", "local_auth_provider")),
	}, nil
}

// Register implements Provider.
func (p *LocalProvider) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(in.Email, in.Name, in.Password)
	if err != nil {
		return nil, err
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login implements Provider.
func (p *LocalProvider) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := p.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	pair, err := p.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return pair, nil
}

// Logout implements Provider.
func (p *LocalProvider) Logout(ctx context.Context, accessToken string) error {
	claims, err := p.jwt.ValidateToken(ctx, accessToken)
	if err != nil {
		return err
	}
	if err := p.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logger.FromContextOrDefault(ctx, p.logger).Info("user logged out",
		slog.String("user_id", claims.UserID.String()))
	return nil
}

// Refresh implements Provider. The presented refresh token is revoked so it
// cannot be used twice.
func (p *LocalProvider) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := p.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	revoked, err := p.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check denylist: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}

	user, err := p.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if err := p.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return p.issue(ctx, user)
}

func (p *LocalProvider) issue(ctx context.Context, user *domain.User) (*TokenPair, error) {
	access, err := p.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := p.jwt.GenerateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	claims, err := p.jwt.ValidateToken(ctx, access)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: claims.ExpiresAt}, nil
}

// ForgotPassword implements Provider. The reset link is logged; delivering
// it is left to an operator.
func (p *LocalProvider) ForgotPassword(ctx context.Context, email string) error {
	log := logger.FromContextOrDefault(ctx, p.logger)

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, hash, err := NewResetToken()
	if err != nil {
		return err
	}
	if err := p.resets.Create(ctx, domain.NewPasswordResetToken(user.ID, hash, p.now(), p.resetLifetime)); err != nil {
		return err
	}

	log.Info("password reset link issued",
		slog.String("user_id", user.ID.String()),
		slog.String("reset_link", p.resetLink(token)))
	return nil
}

func (p *LocalProvider) resetLink(token string) string {
	base := p.resetURL
	if base == "" {
		return token
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// ResetPassword implements Provider. The token is consumed and the password
// changed in one transaction.
func (p *LocalProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrResetTokenInvalid
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	err := store.RunInTransaction(ctx, p.db, func(ctx context.Context, tx *sql.Tx) error {
		userID, err := p.resets.WithTx(tx).Consume(ctx, HashToken(token), p.now())
		if err != nil {
			if store.IsNotFoundError(err) {
				return domain.ErrResetTokenInvalid
			}
			return err
		}
		return p.users.WithTx(tx).UpdatePassword(ctx, userID, newPassword)
	})
	if err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, p.logger).Info("password reset completed")
	return nil
}

// Authenticate implements Provider.
func (p *LocalProvider) Authenticate(ctx context.Context, accessToken string) (*Claims, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	claims, err := p.jwt.ValidateToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	revoked, err := p.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check denylist: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}
