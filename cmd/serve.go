package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/content-discovery/internal/api"
	"github.com/jonesrussell/content-discovery/internal/bootstrap"
	"github.com/jonesrussell/content-discovery/internal/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server exposing source management and scheduler
operations. When scheduler.cron is configured, an in-process trigger also
runs periodic scheduling passes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.New(configPath)
	if err != nil {
		return err
	}
	defer deps.Close()

	sourceHandler := handlers.NewSourceHandler(deps.Repo, deps.Publisher, deps.Log)
	schedulerHandler := handlers.NewSchedulerHandler(deps.Scheduler, deps.Log)
	router := api.NewRouter(sourceHandler, schedulerHandler, deps.Cfg.Server.CORSOrigins, deps.Log)
	server := api.NewServer(deps.Cfg, router, deps.Log)

	// Optional in-process periodic trigger
	if spec := deps.Cfg.Scheduler.Cron; spec != "" {
		trigger, triggerErr := bootstrap.NewTrigger(spec, deps.Scheduler, deps.Log)
		if triggerErr != nil {
			return triggerErr
		}
		trigger.Start()
		defer trigger.Stop()
	}

	if runErr := server.Run(ctx); runErr != nil {
		return fmt.Errorf("server error: %w", runErr)
	}

	deps.Log.Info("Server exited")
	return nil
}
