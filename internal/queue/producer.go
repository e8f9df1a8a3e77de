package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, job Job) error
}

type RedisProducer struct {
	Redis *redis.Client
}

func NewProducer(redis *redis.Client) Producer {
	return &RedisProducer{Redis: redis}
}

// Enqueue stores job in the sorted set scored by the unix second it becomes
// due. A zero RunAt means now.
func (p *RedisProducer) Enqueue(ctx context.Context, job Job) error {
	if job.RunAt == 0 {
		job.RunAt = time.Now().Unix()
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.Redis.ZAdd(ctx, QueueKey, redis.Z{
		Score:  float64(job.RunAt),
		Member: jobBytes,
	}).Err()
}

// DeadLetter pushes job onto the dead-letter list.
func DeadLetter(ctx context.Context, rdb *redis.Client, job Job) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.RPush(ctx, DLQKey, jobBytes).Err()
}
