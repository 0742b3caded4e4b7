package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/cache"
	"github.com/TomerHalfon/SuperList-sub000/internal/adapters/handler/http/response"
)

func setLimitHeaders(c *gin.Context, limit int, remaining int64, reset time.Time) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, remaining), 10))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}

func tooManyRequests(c *gin.Context, retryIn time.Duration) {
	secs := int(math.Ceil(retryIn.Seconds()))
	c.Header("Retry-After", strconv.Itoa(secs))
	response.Fail(c, http.StatusTooManyRequests, response.CodeRateLimited, "Too many requests. Slow down!",
		gin.H{"retry_in_s": secs})
}

// RateLimiterMiddleware is a fixed-window limiter shared by every instance
// through Redis. It fails open when Redis is unreachable.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := cache.Key("rate_limit", c.ClientIP())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("Redis error, rate limiter skipped", zap.Error(err))
			c.Next()
			return
		}

		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				logger.Warn("Redis expire error, deleting key", zap.String("key", key), zap.Error(err))
				rdb.Del(ctx, key)
				c.Next()
				return
			}
		}

		ttl, err := rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}

		setLimitHeaders(c, limit, int64(limit)-count, time.Now().Add(ttl))

		if count > int64(limit) {
			tooManyRequests(c, ttl)
			return
		}

		c.Next()
	}
}

// LocalRateLimiter is the single-instance fallback used when Redis is off:
// one token bucket per client IP, refilled at limit per window.
type LocalRateLimiter struct {
	limit   int
	window  time.Duration
	idleTTL time.Duration

	mu      sync.Mutex
	clients map[string]*localClient

	stop chan struct{}
	done chan struct{}
}

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalRateLimiter(limit int, window time.Duration) *LocalRateLimiter {
	l := &LocalRateLimiter{
		limit:   limit,
		window:  window,
		idleTTL: 2 * window,
		clients: make(map[string]*localClient),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *LocalRateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[key]
	if !ok {
		every := rate.Every(l.window / time.Duration(l.limit))
		cl = &localClient{limiter: rate.NewLimiter(every, l.limit)}
		l.clients[key] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (l *LocalRateLimiter) cleanup() {
	defer close(l.done)

	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-l.idleTTL)
			l.mu.Lock()
			for key, cl := range l.clients {
				if cl.lastSeen.Before(cutoff) {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// Shutdown stops the idle-client sweeper.
func (l *LocalRateLimiter) Shutdown() error {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
	<-l.done
	return nil
}

func (l *LocalRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := l.limiterFor(c.ClientIP())

		r := limiter.Reserve()
		delay := r.Delay()
		remaining := int64(limiter.Tokens())
		if delay > 0 {
			r.Cancel()
			setLimitHeaders(c, l.limit, 0, time.Now().Add(delay))
			tooManyRequests(c, delay)
			return
		}

		setLimitHeaders(c, l.limit, remaining, time.Now().Add(l.window))
		c.Next()
	}
}
