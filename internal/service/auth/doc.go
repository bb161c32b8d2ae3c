// Package auth authenticates API callers. A Provider either manages users in
// the application database (LocalProvider) or delegates to a hosted
// GoTrue-compatible service (GoTrueProvider). Both validate HS256 access
// tokens locally and consult a Denylist for tokens revoked by logout or
// refresh rotation.
package auth
