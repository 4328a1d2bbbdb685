package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestRedisRateLimiterAllow(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_700_000_000, 0)
	limiter, err := newRedisRateLimiter(rdb, 2, func() time.Time { return now })
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	allowed, err := limiter.Allow(context.Background(), "tenant-a", "sms")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("first call should be allowed")
	}

	allowed, err = limiter.Allow(context.Background(), "tenant-a", "sms")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("second call should be allowed")
	}

	allowed, err = limiter.Allow(context.Background(), "tenant-a", "sms")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Fatal("third call should be rejected by rate limit")
	}

	now = now.Add(time.Minute)
	allowed, err = limiter.Allow(context.Background(), "tenant-a", "sms")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("new minute window should allow call")
	}
}

func TestRedisRateLimiterAllowPerTenantAndChannel(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	now := time.Unix(1_700_000_100, 0)
	limiter, err := newRedisRateLimiter(rdb, 1, func() time.Time { return now })
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}

	allowed, err := limiter.Allow(context.Background(), "tenant-a", "sms")
	if err != nil {
		t.Fatalf("Allow(tenant-a, sms) error = %v", err)
	}
	if !allowed {
		t.Fatal("tenant-a sms should be allowed on first request")
	}

	allowed, err = limiter.Allow(context.Background(), "tenant-a", "whatsapp")
	if err != nil {
		t.Fatalf("Allow(tenant-a, whatsapp) error = %v", err)
	}
	if !allowed {
		t.Fatal("tenant-a whatsapp should be allowed on first request")
	}

	allowed, err = limiter.Allow(context.Background(), "tenant-b", "sms")
	if err != nil {
		t.Fatalf("Allow(tenant-b, sms) error = %v", err)
	}
	if !allowed {
		t.Fatal("tenant-b sms should not be affected by tenant-a's counter")
	}

	allowed, err = limiter.Allow(context.Background(), "tenant-a", "sms")
	if err != nil {
		t.Fatalf("Allow(tenant-a, sms) error = %v", err)
	}
	if allowed {
		t.Fatal("tenant-a sms second request should be rejected")
	}
}

func TestRedisRateLimiterAllowValidation(t *testing.T) {
	t.Parallel()

	rdb := newTestRedisClient(t)

	limiter, err := NewRedisRateLimiter(rdb, 10)
	if err != nil {
		t.Fatalf("NewRedisRateLimiter() error = %v", err)
	}

	if _, err := limiter.Allow(context.Background(), "", "sms"); err == nil {
		t.Fatal("expected error for empty tenant id")
	}
	if _, err := limiter.Allow(context.Background(), "tenant-a", ""); err == nil {
		t.Fatal("expected error for empty channel")
	}
}

func newTestRedisClient(t *testing.T) *goredis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = rdb.Close()
	})

	return rdb
}
