package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClaimDue removes and returns the earliest job due at now. ok is false when
// nothing is due or another poller claimed the job first.
func ClaimDue(ctx context.Context, rdb *redis.Client, now time.Time) (payload string, ok bool, err error) {
	result, err := rdb.ZRangeByScore(ctx, QueueKey, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    fmt.Sprintf("%d", now.Unix()),
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	if len(result) == 0 {
		return "", false, nil
	}

	removed, err := rdb.ZRem(ctx, QueueKey, result[0]).Result()
	if err != nil {
		return "", false, err
	}
	if removed == 0 {
		return "", false, nil
	}
	return result[0], true, nil
}
