package bootstrap

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/content-discovery/internal/logger"
	"github.com/jonesrussell/content-discovery/internal/scheduler"
)

// Trigger runs periodic scheduling passes in-process. Scheduling passes must
// never overlap, so entries run with SkipIfStillRunning.
type Trigger struct {
	cron   *cron.Cron
	logger logger.Logger
}

// NewTrigger registers a scheduling pass at the given cron spec
// (standard 5-field format: minute hour day month weekday).
func NewTrigger(spec string, sched *scheduler.Scheduler, log logger.Logger) (*Trigger, error) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := c.AddFunc(spec, func() {
		result := sched.ScheduleAllSources(context.Background())
		if !result.Success {
			log.Error("Periodic scheduling pass failed",
				logger.String("error", result.Error),
			)
			return
		}
		log.Info("Periodic scheduling pass completed",
			logger.Int("total", result.Total),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("register scheduling trigger %q: %w", spec, err)
	}

	return &Trigger{
		cron:   c,
		logger: log,
	}, nil
}

// Start begins firing the trigger.
func (t *Trigger) Start() {
	t.logger.Info("Scheduling trigger started")
	t.cron.Start()
}

// Stop halts the trigger and waits for a running pass to finish.
func (t *Trigger) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.logger.Info("Scheduling trigger stopped")
}
