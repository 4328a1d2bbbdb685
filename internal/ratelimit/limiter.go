package ratelimit

import "context"

// RateLimiter caps how many dispatches a tenant may send per channel.
type RateLimiter interface {
	Allow(ctx context.Context, tenantID, channel string) (bool, error)
}
