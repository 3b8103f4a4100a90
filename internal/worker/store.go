package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vetstudy-backend/internal/models"
)

const (
	QueueKey = "queue:generation"
	jobTTL   = 24 * time.Hour
	lockTTL  = 10 * time.Minute
)

var ErrJobNotFound = errors.New("generation job not found")

// JobKey is both the state key and the pub/sub channel of a job.
func JobKey(id uuid.UUID) string {
	return "generation_job:" + id.String()
}

func lockKey(id uuid.UUID) string {
	return "job_lock:" + id.String()
}

// Store keeps generation jobs in Redis. Jobs expire a day after creation.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Enqueue stores a pending job and pushes its id onto the queue.
func (s *Store) Enqueue(ctx context.Context, job *models.GenerationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, JobKey(job.ID), data, jobTTL)
		pipe.RPush(ctx, QueueKey, job.ID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	data, err := s.rdb.Get(ctx, JobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	var job models.GenerationJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	return &job, nil
}

// Save overwrites the job state without touching its expiry.
func (s *Store) Save(ctx context.Context, job *models.GenerationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := s.rdb.Set(ctx, JobKey(job.ID), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *Store) Publish(ctx context.Context, id uuid.UUID, msg models.WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, JobKey(id), data).Err()
}

// Pop blocks for up to timeout waiting for the next job id. It returns
// uuid.Nil when the wait times out.
func (s *Store) Pop(ctx context.Context, timeout time.Duration) (uuid.UUID, error) {
	result, err := s.rdb.BLPop(ctx, timeout, QueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	if len(result) < 2 {
		return uuid.Nil, nil
	}
	return uuid.Parse(result[1])
}

func (s *Store) Requeue(ctx context.Context, id uuid.UUID) error {
	return s.rdb.RPush(ctx, QueueKey, id.String()).Err()
}

// Lock claims a job for one worker.
func (s *Store) Lock(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.rdb.SetNX(ctx, lockKey(id), "1", lockTTL).Result()
}

func (s *Store) Unlock(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, lockKey(id)).Err()
}
