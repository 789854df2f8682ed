package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"yamdb/internal/config"
)

// ConnectRedis returns a client for REDIS_URL, or nil when Redis is not
// configured or not reachable. Redis only backs the auth throttle, so the
// API keeps running without it.
func ConnectRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, auth throttle disabled", zap.Error(err))
		return nil
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("failed to connect to redis, auth throttle disabled", zap.Error(err))
		_ = rdb.Close()
		return nil
	}

	logger.Info("redis connected successfully")
	return rdb
}
