package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	app_error "github.com/xenn00/collab-hub/internal/errors"
)

type cachedProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCache_SetGetEvicted(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	err := SetCacheData(ctx, rdb, "identity:u1", &cachedProfile{ID: "u1", Name: "Ada"}, time.Minute)
	require.NoError(t, err)

	got, appErr := GetCacheData[cachedProfile](ctx, rdb, "identity:u1")
	require.Nil(t, appErr)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.Name)

	require.NoError(t, rdb.Del(ctx, "identity:u1").Err())

	got, appErr = GetCacheData[cachedProfile](ctx, rdb, "identity:u1")
	assert.Nil(t, appErr)
	assert.Nil(t, got, "deleted key should be a cache miss")
}

func TestCache_Expiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, SetCacheData(ctx, rdb, "identity:u2", &cachedProfile{ID: "u2"}, time.Second))
	mr.FastForward(2 * time.Second)

	got, appErr := GetCacheData[cachedProfile](ctx, rdb, "identity:u2")
	assert.Nil(t, appErr)
	assert.Nil(t, got)
}

func TestCache_CorruptValue(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("identity:bad", "{not-json"))

	got, appErr := GetCacheData[cachedProfile](context.Background(), rdb, "identity:bad")
	assert.Nil(t, got)
	require.NotNil(t, appErr)
	assert.Equal(t, "json", appErr.Field)
}

func TestRemember(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) (*cachedProfile, *app_error.AppError) {
		loads++
		return &cachedProfile{ID: "u3", Name: "Bob"}, nil
	}

	for i := 0; i < 3; i++ {
		got, appErr := Remember(ctx, rdb, "identity:u3", time.Minute, load)
		require.Nil(t, appErr)
		assert.Equal(t, "Bob", got.Name)
	}
	assert.Equal(t, 1, loads, "hits after the first load come from redis")

	mr.FastForward(2 * time.Minute)
	_, appErr := Remember(ctx, rdb, "identity:u3", time.Minute, load)
	require.Nil(t, appErr)
	assert.Equal(t, 2, loads)
}

func TestRemember_LoadErrorIsNotCached(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	_, appErr := Remember(ctx, rdb, "identity:gone", time.Minute, func(context.Context) (*cachedProfile, *app_error.AppError) {
		return nil, app_error.NewAppError(404, "user not found", "not-found")
	})
	require.NotNil(t, appErr)
	assert.Equal(t, "not-found", appErr.Field)
	assert.False(t, mr.Exists("identity:gone"))
}

func TestRemember_Disabled(t *testing.T) {
	loads := 0
	load := func(context.Context) (*cachedProfile, *app_error.AppError) {
		loads++
		return &cachedProfile{ID: "u4"}, nil
	}

	_, rdb := newTestRedis(t)
	_, _ = Remember(context.Background(), rdb, "identity:u4", 0, load)
	_, _ = Remember(context.Background(), nil, "identity:u4", time.Minute, load)
	assert.Equal(t, 2, loads)
}
