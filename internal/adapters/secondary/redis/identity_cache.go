package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lorrc/helpdesk-backend/internal/config"
	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

const defaultKeyPrefix = "helpdesk:identity:"

// IdentityCache stores resolved callers as JSON under prefix+email with a TTL.
type IdentityCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

var _ ports.IdentityCache = (*IdentityCache)(nil)

// NewClient connects to Redis. An unreachable server is logged, not fatal;
// the identity service falls back to the store on cache errors.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *goredis.Client {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WarnContext(ctx, "unable to reach redis", "addr", cfg.Addr, "error", err)
	} else {
		logger.InfoContext(ctx, "connected to redis", "addr", cfg.Addr)
	}
	return client
}

// NewIdentityCache wraps client. A non-positive ttl stores entries without
// expiry.
func NewIdentityCache(client *goredis.Client, prefix string, ttl time.Duration) *IdentityCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &IdentityCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *IdentityCache) key(email string) string {
	return c.prefix + domain.NormalizeEmail(email)
}

func (c *IdentityCache) Get(ctx context.Context, email string) (*domain.Caller, error) {
	raw, err := c.client.Get(ctx, c.key(email)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var caller domain.Caller
	if err := json.Unmarshal(raw, &caller); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.client.Del(ctx, c.key(email)).Err()
		return nil, nil
	}
	return &caller, nil
}

func (c *IdentityCache) Set(ctx context.Context, caller *domain.Caller) error {
	raw, err := json.Marshal(caller)
	if err != nil {
		return fmt.Errorf("encode caller: %w", err)
	}
	if err := c.client.Set(ctx, c.key(caller.Email), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *IdentityCache) Delete(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, c.key(email)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity for the health endpoint.
func (c *IdentityCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *IdentityCache) Close() error {
	return c.client.Close()
}
