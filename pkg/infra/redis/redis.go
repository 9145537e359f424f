package redis_wrapper

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Enabled             bool   `yaml:"enabled"`
	ConnectionURL       string `yaml:"connection_url"`
	PoolSize            int    `yaml:"pool_size"`
	DialTimeoutSeconds  int    `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
	KeyPrefix           string `yaml:"key_prefix"`
	DepthLevels         int    `yaml:"depth_levels"`
	MaxRetryElapsedMs   int64  `yaml:"max_retry_elapsed_ms"`
}

// Options converts the config into go-redis options.
func Options(redisCfg *RedisConfig) (*redis.Options, error) {
	if redisCfg == nil || redisCfg.ConnectionURL == "" {
		return nil, errors.New("redis connection_url is empty")
	}
	opts, err := redis.ParseURL(redisCfg.ConnectionURL)
	if err != nil {
		return nil, err
	}

	if redisCfg.PoolSize > 0 {
		opts.PoolSize = redisCfg.PoolSize
	}
	if redisCfg.DialTimeoutSeconds > 0 {
		opts.DialTimeout = time.Duration(redisCfg.DialTimeoutSeconds) * time.Second
	}
	if redisCfg.ReadTimeoutSeconds > 0 {
		opts.ReadTimeout = time.Duration(redisCfg.ReadTimeoutSeconds) * time.Second
	}
	if redisCfg.WriteTimeoutSeconds > 0 {
		opts.WriteTimeout = time.Duration(redisCfg.WriteTimeoutSeconds) * time.Second
	}
	if redisCfg.IdleTimeoutSeconds > 0 {
		opts.ConnMaxIdleTime = time.Duration(redisCfg.IdleTimeoutSeconds) * time.Second
	}
	return opts, nil
}

// InitRedis create a redis from config
func InitRedis(ctx context.Context, redisCfg *RedisConfig) (*redis.Client, error) {
	opts, err := Options(redisCfg)
	if err != nil {
		zap.S().Debugf("parse redis url fail: %+v", err)
		return nil, err
	}

	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, err
	}

	zap.S().Debug("connect to redis successful")
	return redisClient, nil
}

// InitRedisWithBackoff retries InitRedis with exponential backoff until it
// succeeds or MaxRetryElapsedMs passes.
func InitRedisWithBackoff(ctx context.Context, redisCfg *RedisConfig) (*redis.Client, error) {
	if _, err := Options(redisCfg); err != nil {
		return nil, err
	}

	var client *redis.Client
	boff := backoff.NewExponentialBackOff()
	if redisCfg != nil && redisCfg.MaxRetryElapsedMs > 0 {
		boff.MaxElapsedTime = time.Duration(redisCfg.MaxRetryElapsedMs) * time.Millisecond
	}

	err := backoff.Retry(func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		var err error
		client, err = InitRedis(ctx, redisCfg)
		if err != nil {
			zap.S().Warnf("connect redis error %s", err.Error())
		}
		return err
	}, backoff.WithContext(boff, ctx))
	if err != nil {
		return nil, err
	}
	return client, nil
}
