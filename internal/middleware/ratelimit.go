package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines a fixed-window rate limit.
type RateLimitConfig struct {
	RequestsPerWindow int           // Must be > 0
	WindowDuration    time.Duration // Must be > 0
}

// Validate checks that the RateLimitConfig has valid values.
func (c RateLimitConfig) Validate() error {
	if c.RequestsPerWindow <= 0 {
		return fmt.Errorf("RequestsPerWindow must be > 0 (got %d)", c.RequestsPerWindow)
	}
	if c.WindowDuration <= 0 {
		return fmt.Errorf("WindowDuration must be > 0 (got %s)", c.WindowDuration)
	}
	return nil
}

// DefaultSearchLimit is the default search endpoint limit: 60 requests per minute.
func DefaultSearchLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerWindow: 60,
		WindowDuration:    time.Minute,
	}
}

// RateLimitStore holds rate limit counters.
type RateLimitStore interface {
	// Allow counts one request for key. retryAfter is the number of seconds
	// until the window resets and is only meaningful when allowed is false.
	Allow(ctx context.Context, key string, config RateLimitConfig) (allowed bool, retryAfter int, err error)
}

type window struct {
	count int
	end   time.Time
}

// InMemoryRateLimitStore implements RateLimitStore with a per-process map
// of fixed windows. Safe for concurrent use.
type InMemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewInMemoryRateLimitStore creates a new in-memory rate limit store.
func NewInMemoryRateLimitStore() *InMemoryRateLimitStore {
	return &InMemoryRateLimitStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow implements RateLimitStore.
func (s *InMemoryRateLimitStore) Allow(_ context.Context, key string, config RateLimitConfig) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.end) {
		s.windows[key] = &window{count: 1, end: now.Add(config.WindowDuration)}
		return true, 0, nil
	}
	if w.count < config.RequestsPerWindow {
		w.count++
		return true, 0, nil
	}
	return false, retrySeconds(w.end.Sub(now)), nil
}

// Cleanup removes expired windows. Call it periodically.
func (s *InMemoryRateLimitStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, w := range s.windows {
		if !now.Before(w.end) {
			delete(s.windows, key)
		}
	}
}

// RedisRateLimitStore implements RateLimitStore with INCR and a window TTL,
// so limits are shared across replicas.
type RedisRateLimitStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisRateLimitStore creates a Redis-backed store.
func NewRedisRateLimitStore(client redis.Cmdable) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client, prefix: "ratelimit:"}
}

// Allow implements RateLimitStore.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, int, error) {
	redisKey := s.prefix + key

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, config.WindowDuration)
		return nil
	})
	if err != nil {
		return true, 0, fmt.Errorf("rate limit increment failed: %w", err)
	}
	if incr.Val() <= int64(config.RequestsPerWindow) {
		return true, 0, nil
	}

	ttl, err := s.client.PTTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = config.WindowDuration
	}
	return false, retrySeconds(ttl), nil
}

func retrySeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs <= 0 {
		secs = 1
	}
	return secs
}

// KeyFunc extracts a rate limit key from an HTTP request.
type KeyFunc func(r *http.Request) string

// IPKeyFunc keys requests by client IP, honouring X-Forwarded-For and
// X-Real-IP from a fronting proxy.
func IPKeyFunc() KeyFunc {
	return func(r *http.Request) string {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return "ip:" + strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return "ip:" + strings.TrimSpace(xri)
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return "ip:" + r.RemoteAddr
		}
		return "ip:" + host
	}
}

// RateLimiter is a middleware that rejects requests over the limit with
// 429 and a Retry-After header. Store errors fail open. metrics and logger
// may be nil.
func RateLimiter(store RateLimitStore, config RateLimitConfig, keyFunc KeyFunc, metrics *Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := store.Allow(r.Context(), keyFunc(r), config)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limit store unavailable, allowing request", "error", err)
				if metrics != nil {
					metrics.IncRateLimitStoreErrors()
				}
				next.ServeHTTP(w, r)
				return
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			if metrics != nil {
				metrics.IncRateLimitBlocked(normalizePath(r.URL.Path))
			}
			SetErrorCode(r.Context(), "rate_limit_exceeded")

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"code":    "rate_limit_exceeded",
					"message": "Too many requests, retry after " + strconv.Itoa(retryAfter) + "s",
				},
			})
		})
	}
}
