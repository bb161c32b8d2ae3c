// Package redis provides a Redis-backed token denylist used to revoke access
// tokens on sign-out across server instances.
package redis
