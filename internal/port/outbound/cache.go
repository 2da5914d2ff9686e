package outbound

import (
	"context"
	"time"
)

// RateDecision is the outcome of one admission check against a window.
type RateDecision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the oldest counted request leaves the
	// window. Zero when Allowed.
	RetryAfter time.Duration
}

// RateLimiterPort counts requests per key over a sliding window.
type RateLimiterPort interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateDecision, error)
}

// IdempotencyStorePort keeps replayable responses keyed by idempotency key.
type IdempotencyStorePort interface {
	// Acquire marks key as in progress. It returns false when another
	// request already holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error

	// Load returns the stored response, or nil when none is stored.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte, ttl time.Duration) error
}
