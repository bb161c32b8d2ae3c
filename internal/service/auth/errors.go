package auth

import "github.com/Ketaiwk/10xcards/internal/domain"

func unauthorized(msg string) *domain.Error {
	return &domain.Error{Kind: domain.KindUnauthorized, Message: msg}
}

// Common authentication errors. All of them carry the unauthorized kind, so
// errors.Is(err, domain.ErrUnauthorized) matches any of them.
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = unauthorized("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = unauthorized("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = unauthorized("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = unauthorized("authentication token is missing")

	// ErrWrongTokenType indicates an access token was used as a refresh token or vice versa
	ErrWrongTokenType = unauthorized("wrong token type")

	// ErrInvalidRefreshToken indicates the refresh token is invalid
	ErrInvalidRefreshToken = unauthorized("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired
	ErrExpiredRefreshToken = unauthorized("refresh token has expired")

	// ErrRevokedToken indicates the token was revoked by a logout
	ErrRevokedToken = unauthorized("authentication token has been revoked")

	// ErrInvalidCredentials indicates a wrong email or password
	ErrInvalidCredentials = unauthorized("invalid email or password")
)
