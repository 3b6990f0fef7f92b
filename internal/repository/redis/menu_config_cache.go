package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
)

// MenuConfigCache caches merged effective menu configs per target role.
// Purely a latency optimization: writers invalidate, readers fall through to
// Postgres on miss, and nothing security-relevant is ever trusted from here
// alone.
type MenuConfigCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewMenuConfigCache constructs a cache with the given key prefix and TTL.
func NewMenuConfigCache(client *redis.Client, prefix string, ttl time.Duration) *MenuConfigCache {
	if prefix == "" {
		prefix = "cadmin:menu-config"
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MenuConfigCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *MenuConfigCache) key(target domain.RoleKey) string {
	return fmt.Sprintf("%s:%s", c.prefix, target)
}

// GetEffective returns the cached config and whether it was present.
func (c *MenuConfigCache) GetEffective(ctx context.Context, target domain.RoleKey) (map[string]bool, bool, error) {
	raw, err := c.client.Get(ctx, c.key(target)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var config map[string]bool
	if err := json.Unmarshal([]byte(raw), &config); err != nil {
		return nil, false, fmt.Errorf("decode cached menu config: %w", err)
	}
	return config, true, nil
}

// SetEffective stores the merged config with the configured TTL.
func (c *MenuConfigCache) SetEffective(ctx context.Context, target domain.RoleKey, config map[string]bool) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode menu config: %w", err)
	}
	if err := c.client.Set(ctx, c.key(target), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops the cached config after a toggle write.
func (c *MenuConfigCache) Invalidate(ctx context.Context, target domain.RoleKey) error {
	if err := c.client.Del(ctx, c.key(target)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
