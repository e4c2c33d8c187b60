// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/movie-catalog/internal/config"
)

func TestOpenRedis(t *testing.T) {
	r, err := OpenRedis(config.RedisConfig{URL: "redis://127.0.0.1:1/2", PoolSize: 3})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	opts := r.Client.Options()
	assert.Equal(t, "127.0.0.1:1", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 3, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
}

func TestOpenRedis_BadURL(t *testing.T) {
	_, err := OpenRedis(config.RedisConfig{URL: "http://nope"})
	assert.Error(t, err)
}

func TestRedisPing_Unreachable(t *testing.T) {
	r, err := OpenRedis(config.RedisConfig{URL: "redis://127.0.0.1:1/0"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err = r.Ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}
