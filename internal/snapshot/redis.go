package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/leaderboard/internal/leaderboard"
	"github.com/onnwee/leaderboard/internal/tracing"
)

// Defaults for RedisCache.
const (
	DefaultCacheKey = "leaderboard:snapshot"
	DefaultCacheTTL = 30 * time.Second
)

// RedisCacheConfig configures a RedisCache.
type RedisCacheConfig struct {
	Key    string        // Default: DefaultCacheKey
	TTL    time.Duration // Default: DefaultCacheTTL
	Logger *slog.Logger
}

// RedisCache fronts another SnapshotSource with a CBOR-encoded copy of the
// snapshot stored in Redis. Redis errors fail open: the wrapped source is
// consulted and the error is logged.
type RedisCache struct {
	client redis.Cmdable
	next   leaderboard.SnapshotSource
	key    string
	ttl    time.Duration
	logger *slog.Logger
	enc    cbor.EncMode
}

// NewRedisCache wraps next with a Redis cache.
func NewRedisCache(client redis.Cmdable, next leaderboard.SnapshotSource, cfg RedisCacheConfig) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if next == nil {
		return nil, errors.New("wrapped snapshot source is required")
	}
	if cfg.Key == "" {
		cfg.Key = DefaultCacheKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// RFC 3339 keeps sub-second precision on LastActiveAt.
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create cbor encoder: %w", err)
	}

	return &RedisCache{
		client: client,
		next:   next,
		key:    cfg.Key,
		ttl:    cfg.TTL,
		logger: cfg.Logger,
		enc:    enc,
	}, nil
}

// NewRedisClient parses a redis:// URL and returns a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Snapshot returns the cached snapshot, refreshing it from the wrapped
// source on a miss.
func (c *RedisCache) Snapshot(ctx context.Context) ([]leaderboard.Entry, error) {
	if entries, ok := c.get(ctx); ok {
		return entries, nil
	}

	entries, err := c.next.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, entries)
	return entries, nil
}

func (c *RedisCache) get(ctx context.Context) (entries []leaderboard.Entry, ok bool) {
	var err error
	ctx, endSpan := tracing.StartSourceSpan(ctx, "redis", "get")
	defer func() { endSpan(err) }()

	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		err = nil
		return nil, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "snapshot cache read failed, using source", "key", c.key, "error", err)
		return nil, false
	}

	if err = cbor.Unmarshal(data, &entries); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache entry corrupt, using source", "key", c.key, "error", err)
		return nil, false
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return entries, true
}

func (c *RedisCache) set(ctx context.Context, entries []leaderboard.Entry) {
	var err error
	ctx, endSpan := tracing.StartSourceSpan(ctx, "redis", "set")
	defer func() { endSpan(err) }()

	data, err := c.enc.Marshal(entries)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode snapshot for cache", "error", err)
		return
	}
	if err = c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache write failed", "key", c.key, "error", err)
	}
}

// Invalidate drops the cached snapshot so the next read refreshes it.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate snapshot cache: %w", err)
	}
	return nil
}

// HealthCheck pings Redis.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
