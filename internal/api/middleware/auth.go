package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Ketaiwk/10xcards/internal/api/shared"
	"github.com/Ketaiwk/10xcards/internal/domain"
	"github.com/Ketaiwk/10xcards/internal/service/auth"
)

// AuthMiddleware authenticates bearer tokens against an auth.Provider.
type AuthMiddleware struct {
	provider auth.Provider
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(provider auth.Provider) *AuthMiddleware {
	return &AuthMiddleware{provider: provider}
}

// Authenticate validates the token from the Authorization header and adds
// the user ID and the raw token to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}
		token := parts[1]

		claims, err := m.provider.Authenticate(r.Context(), token)
		if err != nil {
			if domain.KindOf(err) == domain.KindUnauthorized {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
					unauthorizedMessage(err), err, shared.WithElevatedLogLevel())
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		ctx = shared.WithAccessToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrRevokedToken):
		return "Token revoked"
	default:
		return "Invalid token"
	}
}
