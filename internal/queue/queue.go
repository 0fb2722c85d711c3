// Package queue abstracts the Redis-backed job queues behind small
// interfaces so the scheduler can be exercised against fakes.
package queue

import (
	"context"

	"github.com/jonesrussell/content-discovery/internal/models"
)

// Task type dispatched to check workers.
const TypeSourceCheck = "source:check"

// CleanState selects which finished jobs a Clean call purges.
type CleanState string

const (
	CleanCompleted CleanState = "completed"
	CleanFailed    CleanState = "failed"
)

// EnqueueOptions control per-job retry and retention behavior.
type EnqueueOptions struct {
	// Attempts is the total number of tries the backend gives a job,
	// including the first one.
	Attempts int
	// RemoveOnComplete discards the job record once it succeeds.
	RemoveOnComplete bool
	// KeepFailed retains exhausted jobs for inspection.
	KeepFailed bool
}

// Queue is one named tier queue.
type Queue interface {
	// Enqueue adds a check job for the source and returns the job ID.
	Enqueue(ctx context.Context, sourceID string, opts EnqueueOptions) (string, error)
	// Drain removes all jobs that have not started processing.
	Drain(ctx context.Context) error
	// Counts fetches the queue's current job counters.
	Counts(ctx context.Context) (models.QueueCounts, error)
	// Clean purges finished jobs in the given state from the backing store.
	Clean(ctx context.Context, state CleanState) error
	// Close releases the queue's backend connection.
	Close() error
}

// Backend provides one queue per check frequency.
type Backend interface {
	ForTier(freq models.CheckFrequency) Queue
	Close() error
}
