package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/entity"
	"github.com/xenn00/collab-hub/internal/queue"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	DLQCollection = "dlq_jobs"
	dlqRetention  = 7 * 24 * time.Hour
)

// DLQStore keeps dead-lettered jobs for audit.
type DLQStore interface {
	Save(ctx context.Context, job entity.DLQJob) error
	Stats(ctx context.Context) (map[string]int64, error)
}

type MongoDLQStore struct {
	Collection *mongo.Collection
}

func NewMongoDLQStore(db *mongo.Database) *MongoDLQStore {
	return &MongoDLQStore{Collection: db.Collection(DLQCollection)}
}

func (s *MongoDLQStore) Save(ctx context.Context, job entity.DLQJob) error {
	_, err := s.Collection.InsertOne(ctx, job)
	return err
}

// Stats counts stored jobs per status.
func (s *MongoDLQStore) Stats(ctx context.Context) (map[string]int64, error) {
	pipeline := bson.A{
		bson.M{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := s.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := make(map[string]int64)
	for cursor.Next(ctx) {
		var result struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue
		}
		stats[result.Status] = result.Count
	}

	return stats, cursor.Err()
}

func (wp *WorkerPool) StartDLQWorker(ctx context.Context) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()

		log.Info().Msg("DLQ worker started")
		for {
			if ctx.Err() != nil {
				log.Info().Msg("DLQ worker stopping")
				return
			}
			if err := wp.pollDLQ(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("DLQWorker poll failed")
				wp.sleep(ctx)
			}
		}
	}()
}

// pollDLQ moves at most one dead-lettered job from Redis into the store. A job
// the store rejects goes back onto the Redis list.
func (wp *WorkerPool) pollDLQ(ctx context.Context) error {
	result, err := wp.Redis.BLPop(ctx, wp.DLQPollTimeout, queue.DLQKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("DLQ pop failed: %w", err)
	}

	payload := result[1]
	var job queue.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		log.Warn().Err(err).Msg("DLQWorker invalid job payload")
		return nil
	}

	log.Error().
		Str("job_id", job.ID).
		Str("type", job.Type).
		Str("error", job.ErrorMsg).
		Msg("DLQ job detected")

	now := time.Now().UTC()
	doc := entity.DLQJob{
		JobID:              job.ID,
		Type:               job.Type,
		Payload:            job.Payload,
		ErrorMsg:           job.ErrorMsg,
		Status:             "pending",
		OriginalRetryCount: job.Retry,
		CreatedAt:          now,
		ExpireAt:           now.Add(dlqRetention),
	}

	if err := wp.DLQ.Save(ctx, doc); err != nil {
		wp.Redis.RPush(context.Background(), queue.DLQKey, payload)
		return fmt.Errorf("failed to persist DLQ job %s: %w", job.ID, err)
	}

	log.Info().Str("job_id", job.ID).Msg("DLQ job persisted to MongoDB")
	return nil
}
