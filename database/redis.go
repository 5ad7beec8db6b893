package database

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis from a URL. Returns nil (cache disabled)
// when the URL is empty or the server is unreachable; callers treat a nil
// client as cache-off.
func NewRedisClient(redisURL string, logger *zap.Logger) *redis.Client {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("Invalid Redis URL, cache disabled", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("Redis unreachable, cache disabled", zap.Error(err))
		return nil
	}

	logger.Info("Connected to Redis")
	return client
}
