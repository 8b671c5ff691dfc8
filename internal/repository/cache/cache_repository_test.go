package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/config"
)

// getTestRedis connects to a local Redis or skips the test
func getTestRedis(t *testing.T) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	return &Redis{client: client, logger: zap.NewNop()}
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis(&config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 200 * time.Millisecond}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestRedis_StreamLength(t *testing.T) {
	r := getTestRedis(t)
	defer r.Close()

	ctx := context.Background()
	stream := "test:stream:grid:length"
	defer r.Client().Del(ctx, stream)

	n, err := r.StreamLength(ctx, stream)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, r.Client().XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: map[string]interface{}{"data": "{}"}}).Err())
	n, err = r.StreamLength(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTileKey(t *testing.T) {
	assert.Equal(t, "tile:16:47343:31546", TileKey(16, 47343, 31546))
}

func TestCacheRepository(t *testing.T) {
	r := getTestRedis(t)
	defer r.Close()

	repo := NewCacheRepository(r)
	ctx := context.Background()
	key := "test:grid:cache"
	defer r.Client().Del(ctx, key, TileKey(3, 1, 2))

	t.Run("miss returns nil without error", func(t *testing.T) {
		val, err := repo.Get(ctx, "test:missing:key")
		require.NoError(t, err)
		assert.Nil(t, val)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, key, []byte(`{"height":1}`), time.Minute))

		val, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"height":1}`), val)

		require.NoError(t, repo.Delete(ctx, key))
		val, err = repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, val)
	})

	t.Run("tiles", func(t *testing.T) {
		png := []byte{0x89, 'P', 'N', 'G'}
		require.NoError(t, repo.SetTile(ctx, 3, 1, 2, png, time.Minute))

		val, err := repo.GetTile(ctx, 3, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, png, val)

		require.NoError(t, repo.DeleteTile(ctx, 3, 1, 2))
		val, err = repo.GetTile(ctx, 3, 1, 2)
		require.NoError(t, err)
		assert.Nil(t, val)
	})
}
