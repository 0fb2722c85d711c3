// Package checker implements the per-job worker that fetches a source and
// records the check outcome.
package checker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jonesrussell/content-discovery/internal/config"
	"github.com/jonesrussell/content-discovery/internal/events"
	"github.com/jonesrussell/content-discovery/internal/logger"
	"github.com/jonesrussell/content-discovery/internal/metrics"
	"github.com/jonesrussell/content-discovery/internal/models"
	"github.com/jonesrussell/content-discovery/internal/queue"
	"github.com/jonesrussell/content-discovery/internal/repository"
)

// SourceStore is the slice of the registry the checker needs.
type SourceStore interface {
	GetByID(ctx context.Context, id string) (*models.Source, error)
	MarkChecked(ctx context.Context, id, status string, checkedAt time.Time) error
}

// Checker processes source check jobs.
type Checker struct {
	store     SourceStore
	publisher *events.Publisher
	metrics   *metrics.Metrics
	logger    logger.Logger
	client    *http.Client
	userAgent string
}

func New(
	store SourceStore,
	publisher *events.Publisher,
	m *metrics.Metrics,
	log logger.Logger,
	cfg config.CheckerConfig,
) *Checker {
	return &Checker{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    log,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
	}
}

// ProcessTask handles one source check job. A fetch or parse failure marks
// the source failed and returns the error so the queue backend applies its
// retry policy; a source that vanished or was deactivated after enqueueing
// is skipped without error.
func (c *Checker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseCheckPayload(task.Payload())
	if err != nil {
		// A malformed payload will never succeed; don't retry it.
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	source, err := c.store.GetByID(ctx, payload.SourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.logger.Warn("Source gone before check, skipping",
				logger.String("source_id", payload.SourceID),
			)
			return nil
		}
		return fmt.Errorf("load source %s: %w", payload.SourceID, err)
	}

	if !source.Active {
		c.logger.Debug("Source inactive, skipping check",
			logger.String("source_id", source.ID),
		)
		return nil
	}

	start := time.Now()
	result, checkErr := c.check(ctx, source)
	duration := time.Since(start)

	status := models.CheckStatusOK
	if checkErr != nil {
		status = models.CheckStatusFailed
	}
	c.metrics.ObserveCheckDuration(status, duration)

	if markErr := c.store.MarkChecked(ctx, source.ID, status, time.Now()); markErr != nil {
		return fmt.Errorf("record check for %s: %w", source.ID, markErr)
	}

	c.publisher.PublishAsync(events.SourceEvent{
		EventType:   events.SourceChecked,
		SourceID:    source.ID,
		SourceName:  source.Name,
		CheckStatus: status,
	})

	if checkErr != nil {
		c.logger.Warn("Source check failed",
			logger.String("source_id", source.ID),
			logger.String("url", source.URL),
			logger.Duration("duration", duration),
			logger.Error(checkErr),
		)
		return fmt.Errorf("check source %s: %w", source.ID, checkErr)
	}

	c.logger.Info("Source checked",
		logger.String("source_id", source.ID),
		logger.String("title", result.Title),
		logger.Int("links", result.LinkCount),
		logger.Duration("duration", duration),
	)

	return nil
}
