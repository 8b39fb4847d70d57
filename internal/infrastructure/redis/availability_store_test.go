package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/availability"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/config"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := NewClient(&config.RedisConfig{Host: "localhost", Port: "6379"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := Ping(ctx, client); err != nil {
		t.Skip("Redis not available")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestAvailabilityStore(t *testing.T) {
	client := setupTestRedis(t)
	store := NewAvailabilityStore(client)
	ctx := context.Background()

	t.Run("キャッシュミス時はErrCacheMissを返す", func(t *testing.T) {
		_, err := store.GetStatus(ctx, "adult", "2099-01-01")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("保存した状態を取得できる", func(t *testing.T) {
		err := store.SetStatus(ctx, "adult", "2099-01-02", availability.StatusAvailable, 30*time.Second)
		require.NoError(t, err)

		status, err := store.GetStatus(ctx, "adult", "2099-01-02")
		require.NoError(t, err)
		assert.Equal(t, availability.StatusAvailable, status)
	})

	t.Run("未解決の状態は保存されない", func(t *testing.T) {
		err := store.SetStatus(ctx, "adult", "2099-01-03", availability.StatusLoading, 30*time.Second)
		require.NoError(t, err)

		_, err = store.GetStatus(ctx, "adult", "2099-01-03")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("スナップショットを無効化できる", func(t *testing.T) {
		err := store.SetStatus(ctx, "adult", "2099-01-04", availability.StatusUnavailable, 30*time.Second)
		require.NoError(t, err)

		err = store.Invalidate(ctx, "adult", "2099-01-04")
		require.NoError(t, err)

		_, err = store.GetStatus(ctx, "adult", "2099-01-04")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestAvailabilityStore_TTL(t *testing.T) {
	client := setupTestRedis(t)
	store := NewAvailabilityStore(client)
	ctx := context.Background()

	t.Run("TTL経過後はキャッシュミスになる", func(t *testing.T) {
		err := store.SetStatus(ctx, "adult", "2099-02-01", availability.StatusAvailable, 50*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		_, err = store.GetStatus(ctx, "adult", "2099-02-01")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
