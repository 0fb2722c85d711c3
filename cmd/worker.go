package cmd

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/content-discovery/internal/bootstrap"
	"github.com/jonesrussell/content-discovery/internal/checker"
	"github.com/jonesrussell/content-discovery/internal/logger"
	"github.com/jonesrussell/content-discovery/internal/queue"
)

// Tier queue priorities: faster tiers get more worker attention.
var queuePriorities = map[string]int{
	"hourly":  6,
	"daily":   3,
	"weekly":  2,
	"monthly": 1,
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the check worker",
	Long: `Start the worker that processes source check jobs from the four tier
queues. Runs until interrupted.`,
	RunE: runWorker,
}

func runWorker(_ *cobra.Command, _ []string) error {
	deps, err := bootstrap.New(configPath)
	if err != nil {
		return err
	}
	defer deps.Close()

	chk := checker.New(deps.Repo, deps.Publisher, deps.Metrics, deps.Log, deps.Cfg.Checker)

	srv := asynq.NewServer(queue.RedisClientOpt(deps.Cfg.Redis), asynq.Config{
		Concurrency: deps.Cfg.Worker.Concurrency,
		Queues:      queuePriorities,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeSourceCheck, chk.ProcessTask)

	deps.Log.Info("Starting check worker",
		logger.Int("concurrency", deps.Cfg.Worker.Concurrency),
	)

	// Run blocks until SIGINT/SIGTERM and drains in-flight jobs on its own.
	if runErr := srv.Run(mux); runErr != nil {
		return fmt.Errorf("worker error: %w", runErr)
	}

	deps.Log.Info("Worker exited")
	return nil
}
