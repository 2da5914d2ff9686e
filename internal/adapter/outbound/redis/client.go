package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ariachat/server/internal/infra/config"
)

const (
	clientName  = "aria-server"
	pingTimeout = 5 * time.Second
)

// NewClient builds a client for cfg.Address. A comma-separated address
// list yields a cluster client. The connection is pinged before return.
func NewClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	var addrs []string
	for _, a := range strings.Split(cfg.Address, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis: no address configured")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:      addrs,
		ClientName: clientName,
		Password:   cfg.Password,
		DB:         cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", strings.Join(addrs, ","), err)
	}
	return client, nil
}
