package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/notey-backend/internal/logger"
)

// newRedisClient returns nil when no address is configured; the embedding
// cache then runs without a backing store.
func newRedisClient(log *logger.Logger, cfg Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, embedding cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, embedding cache disabled", "error", err)
		return nil
	}
	return client
}
