package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ariachat/server/internal/port/outbound"
)

const rateLimitKeyPrefix = "aria:ratelimit:"

// slidingWindowScript evicts expired members and admits the request when
// the window has room. It returns {admitted, count, oldest score}; scores
// and the window are in microseconds.
var slidingWindowScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call("ZREMRANGEBYSCORE", KEYS[1], 0, now - window)
local count = redis.call("ZCARD", KEYS[1])
local admitted = 0
if count < limit then
	redis.call("ZADD", KEYS[1], now, ARGV[4])
	redis.call("PEXPIRE", KEYS[1], math.ceil(window / 1000))
	count = count + 1
	admitted = 1
end
local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
local oldestScore = now
if oldest[2] then
	oldestScore = tonumber(oldest[2])
end
return {admitted, count, oldestScore}
`)

type slidingWindowLimiter struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRateLimiter returns a limiter whose windows are shared by every
// replica using client.
func NewRateLimiter(client redis.UniversalClient) outbound.RateLimiterPort {
	return &slidingWindowLimiter{client: client, now: time.Now}
}

func (l *slidingWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (outbound.RateDecision, error) {
	now := l.now().UnixMicro()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	vals, err := slidingWindowScript.Run(ctx, l.client,
		[]string{rateLimitKeyPrefix + key},
		now, window.Microseconds(), limit, member,
	).Int64Slice()
	if err != nil {
		return outbound.RateDecision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(vals) != 3 {
		return outbound.RateDecision{}, fmt.Errorf("rate limit %s: unexpected reply %v", key, vals)
	}

	d := outbound.RateDecision{Allowed: vals[0] == 1, Remaining: limit - int(vals[1])}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = time.Duration(vals[2]+window.Microseconds()-now) * time.Microsecond
		if d.RetryAfter < time.Second {
			d.RetryAfter = time.Second
		}
	}
	return d, nil
}

var _ outbound.RateLimiterPort = (*slidingWindowLimiter)(nil)
