package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/storesense/notify-core/internal/ratelimit"
)

const (
	defaultLimitPerMinute int64 = 60
	windowSeconds               = 60
)

var allowScript = goredis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.RateLimiter = (*RedisRateLimiter)(nil)

// RedisRateLimiter is a distributed per-minute rate limiter backed by Redis.
// Counts are kept per tenant and channel so one noisy store cannot starve
// the others.
type RedisRateLimiter struct {
	client         *goredis.Client
	limitPerMinute int64
	now            func() time.Time
	script         *goredis.Script
}

func NewRedisRateLimiter(client *goredis.Client, limitPerMinute int) (*RedisRateLimiter, error) {
	return newRedisRateLimiter(client, int64(limitPerMinute), time.Now)
}

func newRedisRateLimiter(
	client *goredis.Client,
	limitPerMinute int64,
	nowFn func() time.Time,
) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if limitPerMinute <= 0 {
		limitPerMinute = defaultLimitPerMinute
	}
	if nowFn == nil {
		nowFn = time.Now
	}

	return &RedisRateLimiter{
		client:         client,
		limitPerMinute: limitPerMinute,
		now:            nowFn,
		script:         allowScript,
	}, nil
}

func (r *RedisRateLimiter) Allow(ctx context.Context, tenantID, channel string) (bool, error) {
	if r == nil || r.client == nil || r.script == nil {
		return false, fmt.Errorf("rate limiter is not initialized")
	}

	normalizedTenant := strings.TrimSpace(tenantID)
	if normalizedTenant == "" {
		return false, fmt.Errorf("tenant id is required")
	}
	normalizedChannel := strings.ToLower(strings.TrimSpace(channel))
	if normalizedChannel == "" {
		return false, fmt.Errorf("channel is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	bucket := r.now().UTC().Unix() / windowSeconds
	key := fmt.Sprintf("ratelimit:%s:%s:%d", normalizedTenant, normalizedChannel, bucket)
	result, err := r.script.Run(ctx, r.client, []string{key}, r.limitPerMinute, windowSeconds).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}

	return result == 1, nil
}
