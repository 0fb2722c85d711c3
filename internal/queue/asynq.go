package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jonesrussell/content-discovery/internal/config"
	"github.com/jonesrussell/content-discovery/internal/logger"
	"github.com/jonesrussell/content-discovery/internal/models"
)

// completedRetention is how long a finished job stays visible when the
// caller asked to keep it. Cleanup can purge earlier on demand.
const completedRetention = 7 * 24 * time.Hour

// AsynqBackend implements Backend on top of asynq (Redis).
type AsynqBackend struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queues    map[models.CheckFrequency]*asynqQueue
	closeOnce sync.Once
	closeErr  error
	logger    logger.Logger
}

// NewAsynqBackend connects to Redis and builds one queue handle per tier.
func NewAsynqBackend(cfg config.RedisConfig, log logger.Logger) *AsynqBackend {
	redisOpt := RedisClientOpt(cfg)

	b := &AsynqBackend{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		queues:    make(map[models.CheckFrequency]*asynqQueue),
		logger:    log,
	}

	for _, freq := range models.Frequencies() {
		b.queues[freq] = &asynqQueue{
			name:    freq.QueueName(),
			backend: b,
		}
	}

	return b
}

// RedisClientOpt exposes the connection options for building an asynq server
// with the same Redis settings.
func RedisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (b *AsynqBackend) ForTier(freq models.CheckFrequency) Queue {
	return b.queues[freq]
}

// Close shuts the shared client and inspector. Safe to call more than once;
// the tier queues delegate here so closing each queue is also safe.
func (b *AsynqBackend) Close() error {
	b.closeOnce.Do(func() {
		if err := b.client.Close(); err != nil {
			b.closeErr = fmt.Errorf("close queue client: %w", err)
			return
		}
		if err := b.inspector.Close(); err != nil {
			b.closeErr = fmt.Errorf("close queue inspector: %w", err)
		}
	})
	return b.closeErr
}

type asynqQueue struct {
	name    string
	backend *AsynqBackend
}

func (q *asynqQueue) Enqueue(ctx context.Context, sourceID string, opts EnqueueOptions) (string, error) {
	task, err := NewCheckTask(sourceID)
	if err != nil {
		return "", err
	}

	options := []asynq.Option{asynq.Queue(q.name)}
	if opts.Attempts > 0 {
		// MaxRetry counts retries after the first attempt.
		options = append(options, asynq.MaxRetry(opts.Attempts-1))
	}
	if !opts.RemoveOnComplete {
		options = append(options, asynq.Retention(completedRetention))
	}
	// KeepFailed needs no option: asynq archives exhausted tasks until the
	// archive is cleaned.

	info, err := q.backend.client.EnqueueContext(ctx, task, options...)
	if err != nil {
		return "", fmt.Errorf("enqueue on %s: %w", q.name, err)
	}

	return info.ID, nil
}

// Drain removes every job that has not started processing: pending jobs plus
// scheduled and retry jobs. Active jobs keep running.
func (q *asynqQueue) Drain(ctx context.Context) error {
	deletes := []func(string) (int, error){
		q.backend.inspector.DeleteAllPendingTasks,
		q.backend.inspector.DeleteAllScheduledTasks,
		q.backend.inspector.DeleteAllRetryTasks,
	}
	for _, del := range deletes {
		if _, err := del(q.name); err != nil && !isQueueNotFound(err) {
			return fmt.Errorf("drain %s: %w", q.name, err)
		}
	}
	return nil
}

func (q *asynqQueue) Counts(ctx context.Context) (models.QueueCounts, error) {
	info, err := q.backend.inspector.GetQueueInfo(q.name)
	if err != nil {
		if isQueueNotFound(err) {
			// Queue has never seen a job; all counters are zero.
			return models.QueueCounts{}, nil
		}
		return models.QueueCounts{}, fmt.Errorf("queue info for %s: %w", q.name, err)
	}

	return models.QueueCounts{
		Waiting:   info.Pending,
		Active:    info.Active,
		Completed: info.Completed,
		Failed:    info.Archived,
		Delayed:   info.Scheduled + info.Retry,
	}, nil
}

func (q *asynqQueue) Clean(ctx context.Context, state CleanState) error {
	var err error
	switch state {
	case CleanCompleted:
		_, err = q.backend.inspector.DeleteAllCompletedTasks(q.name)
	case CleanFailed:
		_, err = q.backend.inspector.DeleteAllArchivedTasks(q.name)
	default:
		return fmt.Errorf("unknown clean state %q", state)
	}

	if err != nil && !isQueueNotFound(err) {
		return fmt.Errorf("clean %s jobs on %s: %w", state, q.name, err)
	}
	return nil
}

func (q *asynqQueue) Close() error {
	return q.backend.Close()
}

func isQueueNotFound(err error) bool {
	return errors.Is(err, asynq.ErrQueueNotFound)
}
