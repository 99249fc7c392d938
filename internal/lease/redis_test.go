package lease

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisManager connects to MENZA_TEST_REDIS_ADDR with a key prefix of its own
func newTestRedisManager(t *testing.T) (*RedisManager, *redis.Client, string) {
	addr := os.Getenv("MENZA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MENZA_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())

	prefix := fmt.Sprintf("menza:test:%d:", time.Now().UnixNano())
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
		_ = client.Close()
	})

	return NewRedisManagerWithClient(client, prefix), client, prefix
}

func TestRedisManager_Exclusive(t *testing.T) {
	manager, _, _ := newTestRedisManager(t)
	ctx := context.Background()

	first, err := manager.TryAcquire(ctx, "food-status-worker", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "food-status-worker", first.Name())

	_, err = manager.TryAcquire(ctx, "food-status-worker", time.Minute)
	assert.ErrorIs(t, err, ErrHeld)

	other, err := manager.TryAcquire(ctx, "something-else", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, first.Release(ctx))

	again, err := manager.TryAcquire(ctx, "food-status-worker", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestRedisManager_ExpiredLeaseCanBeTaken(t *testing.T) {
	manager, client, prefix := newTestRedisManager(t)
	ctx := context.Background()

	stale, err := manager.TryAcquire(ctx, "food-status-worker", 100*time.Millisecond)
	require.NoError(t, err)

	var fresh Lease
	require.Eventually(t, func() bool {
		fresh, err = manager.TryAcquire(ctx, "food-status-worker", time.Minute)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	// The expired holder must not delete the new holder's key
	require.NoError(t, stale.Release(ctx))

	_, err = manager.TryAcquire(ctx, "food-status-worker", time.Minute)
	assert.ErrorIs(t, err, ErrHeld)

	ttl, err := client.PTTL(ctx, prefix+"food-status-worker").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, fresh.Release(ctx))
	exists, err := client.Exists(ctx, prefix+"food-status-worker").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
