package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Ketaiwk/10xcards/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "10xcards:denylist:"

// Denylist stores revoked token IDs in Redis until the tokens expire.
type Denylist struct {
	rdb    *goredis.Client
	logger *slog.Logger
}

// NewDenylist connects to Redis and verifies the connection.
func NewDenylist(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*Denylist, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("missing redis address")
	}
	if logger == nil {
		logger = slog.Default()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Denylist{
		rdb:    rdb,
		logger: logger.With(slog.String("component", "redis_denylist")),
	}, nil
}

// Key returns the Redis key for a token ID.
func Key(jti string) string {
	return keyPrefix + jti
}

// Revoke marks jti as revoked until the given time. Already expired tokens
// are ignored.
func (d *Denylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, Key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	d.logger.Debug("token revoked", slog.Duration("ttl", ttl))
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, Key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Close closes the Redis client.
func (d *Denylist) Close() error {
	return d.rdb.Close()
}
