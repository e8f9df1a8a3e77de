package utils

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/collab-hub/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GetCacheData returns nil, nil on a miss.
func GetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string) (*T, *app_error.AppError) {
	val, err := rdb.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, "cache read failed", "redis")
	}

	var data T
	if err := json.Unmarshal(val, &data); err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, "cache entry is not valid json", "json")
	}
	return &data, nil
}

func SetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string, data *T, expire time.Duration) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, "cache entry cannot be encoded", "json")
	}
	return rdb.Set(ctx, cacheKey, bytes, expire).Err()
}

// Remember serves cacheKey from Redis and falls back to load on a miss,
// storing the loaded value for ttl. Cache failures only cost a reload; load
// errors are returned unchanged and never cached. A nil client or a zero ttl
// disables the cache.
func Remember[T any](ctx context.Context, rdb *redis.Client, cacheKey string, ttl time.Duration, load func(ctx context.Context) (*T, *app_error.AppError)) (*T, *app_error.AppError) {
	if rdb == nil || ttl <= 0 {
		return load(ctx)
	}

	cached, appErr := GetCacheData[T](ctx, rdb, cacheKey)
	if appErr != nil {
		log.Warn().Str("key", cacheKey).Str("reason", appErr.Message).Msg("cache read failed, loading from source")
	} else if cached != nil {
		return cached, nil
	}

	data, appErr := load(ctx)
	if appErr != nil {
		return nil, appErr
	}

	if err := SetCacheData(ctx, rdb, cacheKey, data, ttl); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("failed to store cache entry")
	}
	return data, nil
}
