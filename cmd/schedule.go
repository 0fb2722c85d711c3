package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/content-discovery/internal/bootstrap"
	"github.com/jonesrussell/content-discovery/internal/logger"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run one scheduling pass",
	Long: `Run a single scheduling pass across all tiers and exit. Intended to
be driven by an external cron; the pass is not retried on failure.`,
	RunE: runSchedule,
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	deps, err := bootstrap.New(configPath)
	if err != nil {
		return err
	}
	defer deps.Close()

	result := deps.Scheduler.ScheduleAllSources(cmd.Context())
	if !result.Success {
		return errors.New(result.Error)
	}

	deps.Log.Info("Scheduling pass finished",
		logger.Int("total", result.Total),
		logger.Any("scheduled", result.Scheduled),
	)
	return nil
}
