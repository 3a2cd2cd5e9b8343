package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/SerjoschDuering/ifcore-platform/config"
	"github.com/SerjoschDuering/ifcore-platform/internal/adapters/reaper"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/statsd"
	"github.com/SerjoschDuering/ifcore-platform/internal/service"
)

// JobSyncConfig contains configuration for the background job sync runner.
type JobSyncConfig struct {
	Jobs    service.RunningJobLister
	Syncer  service.JobSyncer
	Config  config.JobSyncConfig
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// RunJobSync starts the job sync loop.
func RunJobSync(ctx context.Context, cfg JobSyncConfig) error {
	svc, err := service.NewJobSyncService(service.JobSyncServiceOptions{
		Jobs:    cfg.Jobs,
		Syncer:  cfg.Syncer,
		Config:  cfg.Config,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create job sync service: %w", err)
	}

	return svc.Run(ctx)
}

// ReaperConfig contains configuration for reaper.
type ReaperConfig struct {
	DB      *sql.DB
	Logger  *slog.Logger
	Config  config.ReaperConfig
	Metrics statsd.Sink
}

// RunReaper starts the reaper service.
func RunReaper(ctx context.Context, cfg ReaperConfig) error {
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		DB:      cfg.DB,
		Config:  cfg.Config,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create reaper runner: %w", err)
	}

	return runner.Run(ctx)
}
