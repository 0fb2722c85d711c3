package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/content-discovery/internal/bootstrap"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge finished jobs from all tier queues",
	RunE:  runCleanup,
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	deps, err := bootstrap.New(configPath)
	if err != nil {
		return err
	}
	defer deps.Close()

	result := deps.Scheduler.CleanupJobs(cmd.Context())
	if !result.Success {
		return errors.New(result.Error)
	}

	deps.Log.Info("Queue cleanup finished")
	return nil
}
