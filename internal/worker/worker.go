package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/collab-hub/internal/queue"
)

const (
	defaultPollInterval   = time.Second
	defaultRetryBase      = 5 * time.Second
	defaultDLQPollTimeout = 10 * time.Second
	requeueTimeout        = 5 * time.Second
)

// JobHandler runs one job. A returned error schedules a retry.
type JobHandler interface {
	HandleJob(ctx context.Context, job queue.Job) error
}

// Alerter is told about every job that lands in the dead-letter queue.
type Alerter interface {
	Alert(job queue.Job) bool
}

type WorkerPool struct {
	Redis          *redis.Client
	WorkerNum      int
	PollInterval   time.Duration
	RetryBase      time.Duration
	DLQPollTimeout time.Duration
	JobChannel     chan string
	Handler        JobHandler
	DLQ            DLQStore
	Alerter        Alerter
	producer       queue.Producer
	wg             sync.WaitGroup
}

func NewWorkerPool(redis *redis.Client, workerNum int, handler JobHandler, dlq DLQStore, alerter Alerter) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	return &WorkerPool{
		Redis:          redis,
		WorkerNum:      workerNum,
		PollInterval:   defaultPollInterval,
		RetryBase:      defaultRetryBase,
		DLQPollTimeout: defaultDLQPollTimeout,
		JobChannel:     make(chan string, 100),
		Handler:        handler,
		DLQ:            dlq,
		Alerter:        alerter,
		producer:       queue.NewProducer(redis),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	log.Info().Msgf("Starting worker pool with %d workers", wp.WorkerNum)

	for i := 0; i < wp.WorkerNum; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}

	wp.wg.Add(1)
	go wp.poll(ctx)
}

// poll moves due jobs from the sorted set onto JobChannel.
func (wp *WorkerPool) poll(ctx context.Context) {
	defer wp.wg.Done()

	for {
		if ctx.Err() != nil {
			log.Info().Msg("Stopping worker pool")
			return
		}

		payload, ok, err := queue.ClaimDue(ctx, wp.Redis, time.Now())
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Msg("Worker: failed to pop job")
			}
			wp.sleep(ctx)
			continue
		}
		if !ok {
			wp.sleep(ctx)
			continue
		}

		select {
		case wp.JobChannel <- payload:
		case <-ctx.Done():
			// put the claimed job back so it survives the restart
			wp.Redis.ZAdd(context.Background(), queue.QueueKey, redis.Z{Score: float64(time.Now().Unix()), Member: payload})
			return
		}
	}
}

func (wp *WorkerPool) sleep(ctx context.Context) {
	timer := time.NewTimer(wp.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Info().Msgf("Worker %d started", id)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("Worker %d stopping", id)
			return
		case payload := <-wp.JobChannel:
			wp.processJob(ctx, payload)
		}
	}
}

func (wp *WorkerPool) processJob(ctx context.Context, payload string) {
	var job queue.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		log.Warn().Err(err).Msg("Worker: failed to unmarshal job payload")
		return
	}

	err := wp.Handler.HandleJob(ctx, job)
	if err == nil {
		log.Debug().Str("job_id", job.ID).Str("type", job.Type).Msg("Job completed")
		return
	}

	job.Retry++
	job.ErrorMsg = err.Error()

	// the job must reach redis even when ctx was cancelled by shutdown
	storeCtx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
	defer cancel()

	if job.Retry >= job.MaxRetry || job.Expired(time.Now()) {
		log.Error().Str("job_id", job.ID).Str("type", job.Type).Str("error", job.ErrorMsg).Msg("Job moved to DLQ")
		if err := queue.DeadLetter(storeCtx, wp.Redis, job); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to push job to DLQ")
		}
		if wp.Alerter != nil {
			wp.Alerter.Alert(job)
		}
		return
	}

	delay := wp.RetryBase * time.Duration(1<<job.Retry)
	job.RunAt = time.Now().Add(delay).Unix()
	if err := wp.producer.Enqueue(storeCtx, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to schedule job retry")
		return
	}
	log.Warn().Str("job_id", job.ID).Msgf("Retrying in %v seconds (%d/%d)", delay.Seconds(), job.Retry, job.MaxRetry)
}

func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
	log.Info().Msg("All workers have stopped")
}
