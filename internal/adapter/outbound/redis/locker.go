package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariachat/server/internal/port/outbound"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const accountLockKeyPrefix = "lock:account:"

// releaseScript deletes the lock only if it still holds our token, so a
// holder whose lease expired cannot release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// accountLocker implements outbound.AccountLockerPort across instances.
type accountLocker struct {
	client     redis.UniversalClient
	ttl        time.Duration
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewAccountLocker creates a Redis-backed account lock. ttl bounds how long
// a crashed holder can block the account.
func NewAccountLocker(client redis.UniversalClient, ttl, retryDelay time.Duration, logger *zap.Logger) outbound.AccountLockerPort {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if retryDelay <= 0 {
		retryDelay = 20 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &accountLocker{
		client:     client,
		ttl:        ttl,
		retryDelay: retryDelay,
		logger:     logger.Named("account_locker"),
	}
}

func (l *accountLocker) Lock(ctx context.Context, accountID uuid.UUID) (func(), error) {
	key := accountLockKeyPrefix + accountID.String()
	token := uuid.NewString()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("acquire account lock: %w", err)
		}
		if ok {
			return l.unlockFunc(key, token), nil
		}
		timer.Reset(l.retryDelay)
	}
}

func (l *accountLocker) unlockFunc(key, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			// The lease expires on its own.
			l.logger.Warn("failed to release account lock", zap.String("key", key), zap.Error(err))
		}
	}
}
