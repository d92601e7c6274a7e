// Package rediswr builds the Redis client used by the Redis document store.
package rediswr

import (
	"context"
	"strings"

	"github.com/code19m/errx"
	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client. Cluster mode is selected by cfg.IsClusterMode.
func New(cfg Config) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:         strings.Split(cfg.Addrs, ","),
		Username:      cfg.Username,
		Password:      cfg.Password,
		DB:            cfg.DB,
		IsClusterMode: cfg.IsClusterMode,
	})
}

// Connect is New followed by a PING.
func Connect(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	client := New(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"addrs": cfg.Addrs}))
	}
	return client, nil
}
