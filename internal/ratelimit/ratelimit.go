package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/quickcart/pkg/logging"
)

const defaultPrefix = "rl:login"

// Limiter is a fixed-window request counter stored in Redis.
type Limiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

func New(rdb redis.Cmdable, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window, prefix: defaultPrefix}
}

type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Allow counts one hit for key. The window starts with the first hit.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	k := l.prefix + ":" + key

	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit incr: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("ratelimit expire: %w", err)
		}
	}

	if n <= int64(l.limit) {
		return Result{Allowed: true, Remaining: l.limit - int(n)}, nil
	}

	ttl, err := l.rdb.PTTL(ctx, k).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit ttl: %w", err)
	}
	if ttl < 0 {
		// key lost its expiry; restart the window
		_ = l.rdb.Expire(ctx, k, l.window).Err()
		ttl = l.window
	}
	return Result{Allowed: false, RetryAfter: ttl}, nil
}

// Middleware limits requests per client IP. Redis failures let the request through.
func (l *Limiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ip := c.RealIP()
		if ip == "" {
			ip = "unknown"
		}

		res, err := l.Allow(ctx, ip)
		if err != nil {
			logging.FromContext(ctx).Error("ratelimit_unavailable", "error", err)
			return next(c)
		}

		c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			secs := int(math.Ceil(res.RetryAfter.Seconds()))
			c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
			logging.FromContext(ctx).Warn("ratelimit_blocked", "status", http.StatusTooManyRequests, "remote_ip", ip)
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		}
		return next(c)
	}
}
