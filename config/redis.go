package config

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ConnectRedis establishes connection to Redis. It returns nil when REDIS_ADDR
// is unset or the server does not answer; callers fall back to in-memory state.
func ConnectRedis(ctx context.Context, cfg *Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, session revocation kept in memory")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn("Redis connection failed, session revocation kept in memory", zap.Error(err))
		client.Close()
		return nil
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
	return client
}
