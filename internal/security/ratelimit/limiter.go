package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yourorg/librarylend/internal/infrastructure/redis"
)

// Limiter caps requests per client within a window. When a Redis client is
// available the counters are shared across instances; otherwise each client
// gets an in-process token bucket.
type Limiter struct {
	redis   *redis.Client // nil means in-memory only
	maxReqs int
	window  time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	buckets map[string]*clientBucket
	cleanup *time.Ticker
	done    chan struct{}
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing maxRequests per window per client
func NewLimiter(redisClient *redis.Client, maxRequests int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Limiter{
		redis:   redisClient,
		maxReqs: maxRequests,
		window:  window,
		logger:  logger,
		buckets: make(map[string]*clientBucket),
		cleanup: time.NewTicker(5 * time.Minute),
		done:    make(chan struct{}),
	}
	go l.cleanupStaleBuckets()
	return l
}

// Allow reports whether the client may make another request now
func (l *Limiter) Allow(ctx context.Context, clientID string) bool {
	if clientID == "" {
		return true
	}
	if l.redis != nil {
		allowed, err := l.allowRedis(ctx, clientID)
		if err == nil {
			return allowed
		}
		l.logger.Warn("redis rate limit check failed, using in-memory fallback",
			slog.String("error", err.Error()),
		)
	}
	return l.allowLocal(clientID)
}

// allowRedis counts requests in a fixed window shared across instances
func (l *Limiter) allowRedis(ctx context.Context, clientID string) (bool, error) {
	windowStart := time.Now().Unix() / int64(l.window.Seconds())
	key := fmt.Sprintf("ratelimit:%s:%d", clientID, windowStart)

	count, err := l.redis.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window); err != nil {
			return false, err
		}
	}
	return count <= int64(l.maxReqs), nil
}

func (l *Limiter) allowLocal(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[clientID]
	if !exists {
		b = &clientBucket{
			limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.maxReqs)), l.maxReqs),
		}
		l.buckets[clientID] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

func (l *Limiter) cleanupStaleBuckets() {
	for {
		select {
		case <-l.done:
			return
		case <-l.cleanup.C:
			l.mu.Lock()
			staleThreshold := time.Now().Add(-15 * time.Minute)
			for clientID, b := range l.buckets {
				if b.lastSeen.Before(staleThreshold) {
					delete(l.buckets, clientID)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop shuts down the cleanup loop
func (l *Limiter) Stop() {
	l.cleanup.Stop()
	close(l.done)
}
