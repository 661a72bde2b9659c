package connections

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/infrademo/infrademo/internal/config"
)

// dialRedis opens a client and probes it with PING; an unreachable server
// fails the attempt so the caller's retry schedule applies.
func dialRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr()})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
