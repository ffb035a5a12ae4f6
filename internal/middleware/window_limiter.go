package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis"
)

// Forgot-password throttle: attempts per window, keyed by client IP and email
const (
	ForgotPasswordLimit  = 5
	ForgotPasswordWindow = 15 * time.Minute
)

// WindowLimiter counts attempts per key in fixed windows
type WindowLimiter interface {
	// Allow records one attempt for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryWindowLimiter is a process-local WindowLimiter
type MemoryWindowLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	windows   map[string]*window
	lastSweep time.Time
	now       func() time.Time
}

type window struct {
	start time.Time
	count int
}

// NewMemoryWindowLimiter creates a MemoryWindowLimiter
func NewMemoryWindowLimiter(limit int, length time.Duration) *MemoryWindowLimiter {
	return &MemoryWindowLimiter{
		limit:   limit,
		window:  length,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow implements WindowLimiter
func (l *MemoryWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.windows[key] = &window{start: now, count: 1}
		return true, nil
	}
	w.count++
	return w.count <= l.limit, nil
}

// sweep drops expired windows at most once per window length
func (l *MemoryWindowLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}

// redisCounter is the subset of the redis client used for counting
type redisCounter interface {
	Incr(key string) *redis.IntCmd
	Expire(key string, expiration time.Duration) *redis.BoolCmd
}

// RedisWindowLimiter shares fixed windows across instances through Redis.
// The first attempt of a window sets the key expiry.
type RedisWindowLimiter struct {
	client redisCounter
	limit  int
	window time.Duration
	prefix string
}

// NewRedisWindowLimiter creates a RedisWindowLimiter. Keys are stored under prefix.
func NewRedisWindowLimiter(client redisCounter, prefix string, limit int, length time.Duration) *RedisWindowLimiter {
	return &RedisWindowLimiter{client: client, limit: limit, window: length, prefix: prefix}
}

// Allow implements WindowLimiter
func (l *RedisWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	redisKey := l.prefix + key
	count, err := l.client.Incr(redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment %s: %w", redisKey, err)
	}
	if count == 1 {
		if err := l.client.Expire(redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set expiry on %s: %w", redisKey, err)
		}
	}
	return count <= int64(l.limit), nil
}
