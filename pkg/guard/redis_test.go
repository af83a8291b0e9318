package guard_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clinickit/pkg/guard"
)

func redisClient(t *testing.T) *goredis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestNewRedisPanicsOnNilClient(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { guard.NewRedis(nil) })
}

func TestRedis(t *testing.T) {
	t.Parallel()
	client := redisClient(t)
	ctx := context.Background()
	prefix := "test:" + uuid.NewString() + ":"

	t.Run("exclusive between instances", func(t *testing.T) {
		t.Parallel()
		a := guard.NewRedis(client, guard.WithPrefix(prefix))
		b := guard.NewRedis(client, guard.WithPrefix(prefix))

		ok, err := a.TryAcquire(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = b.TryAcquire(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, ok)

		// b never held the key, so its release must not free it.
		require.NoError(t, b.Release(ctx, "user-1"))
		ok, err = b.TryAcquire(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, a.Release(ctx, "user-1"))
		ok, err = b.TryAcquire(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, b.Release(ctx, "user-1"))
	})

	t.Run("key expires", func(t *testing.T) {
		t.Parallel()
		g := guard.NewRedis(client, guard.WithPrefix(prefix), guard.WithTTL(100*time.Millisecond))
		ok, err := g.TryAcquire(ctx, "user-2")
		require.NoError(t, err)
		require.True(t, ok)

		assert.Eventually(t, func() bool {
			n, err := client.Exists(ctx, prefix+"user-2").Result()
			return err == nil && n == 0
		}, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()
		g := guard.NewRedis(client)
		_, err := g.TryAcquire(ctx, "")
		assert.ErrorIs(t, err, guard.ErrEmptyKey)
	})
}
