package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quizmaster/quizmaster-backend/internal/config"
	"github.com/quizmaster/quizmaster-backend/internal/response"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter limits requests per client IP within fixed windows. With a
// Redis client the counters are shared by every instance; without one, or
// while Redis is failing, an in-process counter is used.
type RateLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger

	mu     sync.Mutex
	counts map[string]*windowCount
}

type windowCount struct {
	window int64
	count  int
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window.
// rdb may be nil.
func NewRateLimiter(rdb *redis.Client, scope string, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  limit,
		window: window,
		now:    time.Now,
		log:    log.With().Str("component", "rate_limiter").Str("scope", scope).Logger(),
		counts: make(map[string]*windowCount),
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := rl.Allow(c.Request.Context(), c.ClientIP())
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// Allow counts one request for ip and reports whether it is within the
// limit, along with the time until the current window ends.
func (rl *RateLimiter) Allow(ctx context.Context, ip string) (bool, time.Duration) {
	now := rl.now()
	window := now.UnixNano() / int64(rl.window)
	retryAfter := time.Duration((window+1)*int64(rl.window) - now.UnixNano())

	if rl.rdb != nil {
		count, err := rl.incrShared(ctx, ip, window)
		if err == nil {
			return count <= int64(rl.limit), retryAfter
		}
		rl.log.Warn().Err(err).Msg("Shared rate limit unavailable, using local counter")
	}
	return rl.incrLocal(ip, window) <= rl.limit, retryAfter
}

func (rl *RateLimiter) incrShared(ctx context.Context, ip string, window int64) (int64, error) {
	key := config.CacheKey.RateLimitKey(rl.scope, ip, window)
	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (rl *RateLimiter) incrLocal(ip string, window int64) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	wc, ok := rl.counts[ip]
	if !ok || wc.window != window {
		// Drop counters of finished windows while we hold the lock.
		for k, v := range rl.counts {
			if v.window < window {
				delete(rl.counts, k)
			}
		}
		wc = &windowCount{window: window}
		rl.counts[ip] = wc
	}
	wc.count++
	return wc.count
}
