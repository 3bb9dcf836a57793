package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript counts requests in a window that starts at the first hit.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisBackend is a fixed-window Backend shared through Redis.
type RedisBackend struct {
	client *redis.Client
	prefix string
	script *redis.Script
}

// NewRedisBackend creates a backend using client. Keys are prefixed with
// prefix as given, e.g. "career:ratelimit:".
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: prefix,
		script: redis.NewScript(fixedWindowScript),
	}
}

// NewRedisBackendFromURL parses a redis:// URL and checks the connection.
func NewRedisBackendFromURL(ctx context.Context, url, prefix string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisBackend(client, prefix), nil
}

// Allow increments the counter for key and reports whether it is within limit.
func (b *RedisBackend) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if b == nil || b.client == nil || limit <= 0 || window <= 0 {
		return true, nil
	}
	key = b.prefix + key
	ttl := max(window.Milliseconds(), 1)

	allowed, err := b.script.Run(ctx, b.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit script failed: %w", err)
	}
	return allowed == 1, nil
}

// Close closes the Redis client.
func (b *RedisBackend) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}
