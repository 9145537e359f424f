package redis_wrapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	opts, err := Options(&RedisConfig{
		ConnectionURL:      "redis://:secret@localhost:6380/2",
		PoolSize:           16,
		DialTimeoutSeconds: 3,
		IdleTimeoutSeconds: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 16, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.Equal(t, 30*time.Second, opts.ConnMaxIdleTime)
}

func TestOptionsRejectsEmptyURL(t *testing.T) {
	_, err := Options(&RedisConfig{})
	assert.Error(t, err)

	_, err = Options(nil)
	assert.Error(t, err)

	_, err = Options(&RedisConfig{ConnectionURL: "http://localhost"})
	assert.Error(t, err)
}

func TestInitRedisWithBackoffFailsFastOnBadConfig(t *testing.T) {
	start := time.Now()
	_, err := InitRedisWithBackoff(context.Background(), &RedisConfig{ConnectionURL: "http://localhost"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestInitRedisWithBackoffStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := InitRedisWithBackoff(ctx, &RedisConfig{ConnectionURL: "redis://127.0.0.1:1/0", MaxRetryElapsedMs: 2000})
	require.Error(t, err)
}
