// internal/auth/limiter.go
package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"swipe-screening/internal/common/logger"
)

// Limiter bounds login attempts per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// fixed window: first hit sets the expiry, the script returns the count and remaining ttl.
const loginLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`

// RedisLimiter is a fixed-window counter kept in Redis. A nil limiter or a Redis
// failure allows the attempt.
type RedisLimiter struct {
	client  redis.Scripter
	script  *redis.Script
	limit   int
	window  time.Duration
	prefix  string
	timeout time.Duration
	log     logger.Logger
}

func NewRedisLimiter(client redis.Scripter, limit int, window time.Duration, log logger.Logger) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client:  client,
		script:  redis.NewScript(loginLimitScript),
		limit:   limit,
		window:  window,
		prefix:  "login:attempts:",
		timeout: 250 * time.Millisecond,
		log:     log,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l == nil || key == "" || l.limit <= 0 || l.window <= 0 {
		return true, 0, nil
	}
	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	res, err := l.script.Run(ctx, l.client, []string{l.prefix + key}, ttl, l.limit).Int64Slice()
	if err != nil || len(res) != 2 {
		l.log.Warn("Login limiter unavailable, allowing attempt", map[string]interface{}{
			"error": err,
		})
		return true, 0, err
	}
	if res[0] > int64(l.limit) {
		return false, time.Duration(res[1]) * time.Millisecond, nil
	}
	return true, 0, nil
}

// NoLimit allows every attempt. Used when Redis is not configured.
type NoLimit struct{}

func (NoLimit) Allow(context.Context, string) (bool, time.Duration, error) {
	return true, 0, nil
}
