package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCounter_Hit(t *testing.T) {
	client := redisClient(t)
	counter := redisCounter{client: client}
	ctx := context.Background()

	t.Run("CountsInsideWindow", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			n, err := counter.Hit(ctx, "yamdb:test:count", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, n)
		}

		ttl, err := client.TTL(ctx, "yamdb:test:count").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("LaterHitsKeepWindow", func(t *testing.T) {
		_, err := counter.Hit(ctx, "yamdb:test:window", time.Minute)
		require.NoError(t, err)
		_, err = counter.Hit(ctx, "yamdb:test:window", time.Hour)
		require.NoError(t, err)

		ttl, err := client.TTL(ctx, "yamdb:test:window").Result()
		require.NoError(t, err)
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("RepairsKeyWithoutTTL", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "yamdb:test:stuck", 5, 0).Err())

		n, err := counter.Hit(ctx, "yamdb:test:stuck", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(6), n)

		ttl, err := client.TTL(ctx, "yamdb:test:stuck").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("WindowExpires", func(t *testing.T) {
		_, err := counter.Hit(ctx, "yamdb:test:short", time.Second)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return client.Exists(ctx, "yamdb:test:short").Val() == 0
		}, 5*time.Second, 100*time.Millisecond)

		n, err := counter.Hit(ctx, "yamdb:test:short", time.Second)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestAuthThrottle_Redis(t *testing.T) {
	client := redisClient(t)
	throttle := NewAuthThrottle(client, 2, time.Minute, zap.NewNop())
	r := setupRouter(throttle.Middleware())

	assert.Equal(t, http.StatusOK, perform(r, httptest.NewRequest(http.MethodGet, "/whoami", nil)).Code)
	assert.Equal(t, http.StatusOK, perform(r, httptest.NewRequest(http.MethodGet, "/whoami", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, httptest.NewRequest(http.MethodGet, "/whoami", nil)).Code)
}
