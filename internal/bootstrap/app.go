// Package bootstrap handles application initialization and lifecycle
// management for the content-discovery service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonesrussell/content-discovery/internal/config"
	"github.com/jonesrussell/content-discovery/internal/database"
	"github.com/jonesrussell/content-discovery/internal/events"
	"github.com/jonesrussell/content-discovery/internal/logger"
	"github.com/jonesrussell/content-discovery/internal/metrics"
	"github.com/jonesrussell/content-discovery/internal/queue"
	"github.com/jonesrussell/content-discovery/internal/repository"
	"github.com/jonesrussell/content-discovery/internal/scheduler"
)

const version = "dev"

// Deps holds the process-wide dependencies shared by the commands.
type Deps struct {
	Cfg       *config.Config
	Log       logger.Logger
	DB        *database.DB
	Repo      *repository.SourceRepository
	Publisher *events.Publisher
	Backend   *queue.AsynqBackend
	Metrics   *metrics.Metrics
	Scheduler *scheduler.Scheduler
}

// New assembles all dependencies in phases. Any failure here is fatal to
// startup: the service cannot run without its database and queues.
func New(configPath string) (*Deps, error) {
	// Phase 1: Load config and create logger
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Phase 2: Setup database
	db, err := database.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := repository.NewSourceRepository(db.DB(), log)

	// Phase 3: Setup event publisher (optional)
	publisher := SetupEventPublisher(cfg, log)

	// Phase 4: Setup queues and scheduler
	m := metrics.New(prometheus.DefaultRegisterer)
	backend := queue.NewAsynqBackend(cfg.Redis, log)

	sched, err := scheduler.New(repo, backend, m, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build scheduler: %w", err)
	}

	return &Deps{
		Cfg:       cfg,
		Log:       log,
		DB:        db,
		Repo:      repo,
		Publisher: publisher,
		Backend:   backend,
		Metrics:   m,
		Scheduler: sched,
	}, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config, version string) (logger.Logger, error) {
	log, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(
		logger.String("service", "content-discovery"),
		logger.String("version", version),
	), nil
}

// Close releases database and queue connections in reverse startup order.
func (d *Deps) Close() {
	if err := d.Scheduler.Shutdown(context.Background()); err != nil {
		d.Log.Error("Failed to shut down scheduler", logger.Error(err))
	}
	if err := d.DB.Close(); err != nil {
		d.Log.Error("Failed to close database", logger.Error(err))
	}
	_ = d.Log.Sync()
}
