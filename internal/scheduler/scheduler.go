// Package scheduler turns due sources into check jobs on the tier queues and
// manages queue lifecycle, statistics, and cleanup.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/content-discovery/internal/logger"
	"github.com/jonesrussell/content-discovery/internal/metrics"
	"github.com/jonesrussell/content-discovery/internal/models"
	"github.com/jonesrussell/content-discovery/internal/queue"
	"github.com/jonesrussell/content-discovery/internal/repository"
)

// SourceRegistry is the slice of the source registry the scheduler reads.
// GetByID reports a missing source with repository.ErrNotFound.
type SourceRegistry interface {
	FindSourcesForChecking(ctx context.Context, freq models.CheckFrequency) ([]models.Source, error)
	GetByID(ctx context.Context, id string) (*models.Source, error)
}

// immediateCheckOptions apply to on-demand checks: three attempts total,
// succeeded jobs discarded, failed jobs retained for inspection.
var immediateCheckOptions = queue.EnqueueOptions{
	Attempts:         3,
	RemoveOnComplete: true,
	KeepFailed:       true,
}

// periodicCheckOptions apply to jobs enqueued by scheduling passes. Retries
// are left to the backend default; a missed check is re-derived from source
// state on the next pass anyway.
var periodicCheckOptions = queue.EnqueueOptions{
	RemoveOnComplete: true,
	KeepFailed:       true,
}

// Scheduler owns the four tier queues. Built once at startup, torn down once
// via Shutdown; operations share the same queue handles throughout.
//
// ScheduleAllSources is not safe against overlapping invocations: two
// concurrent passes could interleave their drains and enqueues and
// double-enqueue or wrongly drain a tier. Callers must serialize passes,
// e.g. with a single non-overlapping periodic trigger.
type Scheduler struct {
	registry SourceRegistry
	queues   map[models.CheckFrequency]queue.Queue
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// New wires a scheduler to its queues. An absent tier queue is a fatal
// startup error: the scheduler is unusable without all four.
func New(registry SourceRegistry, backend queue.Backend, m *metrics.Metrics, log logger.Logger) (*Scheduler, error) {
	queues := make(map[models.CheckFrequency]queue.Queue, len(models.Frequencies()))
	for _, freq := range models.Frequencies() {
		q := backend.ForTier(freq)
		if q == nil {
			return nil, fmt.Errorf("queue backend has no queue for tier %s", freq)
		}
		queues[freq] = q
	}

	return &Scheduler{
		registry: registry,
		queues:   queues,
		metrics:  m,
		logger:   log,
	}, nil
}

// ScheduleAllSources re-synchronizes each tier queue with the currently due
// sources: per tier, in fixed order, it queries due sources, drains the queue
// unconditionally, and enqueues one job per source.
//
// Draining before refilling keeps passes idempotent and duplicate-free at the
// cost of possibly dropping a job from a previous pass that has not started
// yet; that check is re-derived from source state on the next pass.
//
// The pass aborts on the first error; the periodic caller is expected to
// re-invoke on its own interval rather than retry.
func (s *Scheduler) ScheduleAllSources(ctx context.Context) ScheduleResult {
	scheduled := make(map[models.CheckFrequency]int, len(s.queues))
	total := 0

	for _, freq := range models.Frequencies() {
		count, err := s.scheduleTier(ctx, freq)
		if err != nil {
			s.logger.Error("Scheduling pass aborted",
				logger.String("tier", freq.String()),
				logger.Error(err),
			)
			s.metrics.RecordSchedulingError()
			return scheduleFailure(err)
		}
		scheduled[freq] = count
		total += count
	}

	s.logger.Info("Scheduling pass completed",
		logger.Int("total", total),
		logger.Any("scheduled", scheduled),
	)

	return ScheduleResult{
		Success:   true,
		Scheduled: scheduled,
		Total:     total,
	}
}

func (s *Scheduler) scheduleTier(ctx context.Context, freq models.CheckFrequency) (int, error) {
	sources, err := s.registry.FindSourcesForChecking(ctx, freq)
	if err != nil {
		return 0, fmt.Errorf("find due sources for %s: %w", freq, err)
	}

	q := s.queues[freq]

	// Drain unconditionally, even when nothing is due, so stale jobs from a
	// previous pass never linger.
	if drainErr := q.Drain(ctx); drainErr != nil {
		return 0, fmt.Errorf("drain %s queue: %w", freq, drainErr)
	}

	for i := range sources {
		if _, enqueueErr := q.Enqueue(ctx, sources[i].ID, periodicCheckOptions); enqueueErr != nil {
			return 0, fmt.Errorf("enqueue source %s on %s: %w", sources[i].ID, freq, enqueueErr)
		}
	}

	s.metrics.RecordScheduled(freq.String(), len(sources))
	s.logger.Debug("Tier scheduled",
		logger.String("tier", freq.String()),
		logger.Int("count", len(sources)),
	)

	return len(sources), nil
}

// ScheduleImmediateCheck enqueues an out-of-band check for one source on the
// queue of the source's own tier, bypassing the periodic cycle.
func (s *Scheduler) ScheduleImmediateCheck(ctx context.Context, sourceID string) ImmediateCheckResult {
	source, err := s.registry.GetByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return immediateFailure(MsgSourceNotFound)
		}
		return immediateFailure(err.Error())
	}

	if !source.Active {
		return immediateFailure(MsgSourceInactive)
	}

	jobID, err := s.queues[source.CheckFrequency].Enqueue(ctx, source.ID, immediateCheckOptions)
	if err != nil {
		s.logger.Error("Failed to enqueue immediate check",
			logger.String("source_id", source.ID),
			logger.Error(err),
		)
		return immediateFailure(err.Error())
	}

	s.metrics.RecordImmediateCheck()
	s.logger.Info("Immediate check scheduled",
		logger.String("source_id", source.ID),
		logger.String("source_name", source.Name),
		logger.String("job_id", jobID),
	)

	return ImmediateCheckResult{
		Success:    true,
		JobID:      jobID,
		SourceID:   source.ID,
		SourceName: source.Name,
	}
}

// QueueStats fetches the five job counters for every tier and a cross-tier
// total. All-or-nothing: any counter fetch error fails the whole snapshot.
func (s *Scheduler) QueueStats(ctx context.Context) StatsResult {
	stats := &models.QueueStats{
		Tiers: make(map[models.CheckFrequency]models.QueueCounts, len(s.queues)),
	}

	for _, freq := range models.Frequencies() {
		counts, err := s.queues[freq].Counts(ctx)
		if err != nil {
			return StatsResult{Error: fmt.Sprintf("stats for %s: %s", freq, err)}
		}
		stats.Tiers[freq] = counts
		stats.Total.Add(counts)

		s.metrics.SetQueueDepth(freq.String(), "waiting", counts.Waiting)
		s.metrics.SetQueueDepth(freq.String(), "active", counts.Active)
		s.metrics.SetQueueDepth(freq.String(), "failed", counts.Failed)
	}

	return StatsResult{Success: true, Stats: stats}
}

// CleanupJobs purges completed and failed jobs from every tier queue's
// backing store. The first clean failure aborts the rest.
func (s *Scheduler) CleanupJobs(ctx context.Context) CleanupResult {
	for _, freq := range models.Frequencies() {
		for _, state := range []queue.CleanState{queue.CleanCompleted, queue.CleanFailed} {
			if err := s.queues[freq].Clean(ctx, state); err != nil {
				return CleanupResult{Error: err.Error()}
			}
		}
	}

	s.logger.Info("Queue cleanup completed")
	return CleanupResult{Success: true}
}

// Shutdown closes every tier queue. All queues get a close attempt; the
// first failure is returned so process exit does not proceed silently on a
// broken close.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, freq := range models.Frequencies() {
		if err := s.queues[freq].Close(); err != nil {
			s.logger.Error("Failed to close queue",
				logger.String("tier", freq.String()),
				logger.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("close %s queue: %w", freq, err)
			}
		}
	}
	return firstErr
}
