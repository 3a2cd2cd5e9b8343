package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SerjoschDuering/ifcore-platform/config"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/metrics"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/statsd"
)

// RunningJobLister lists jobs still waiting on the inference service.
type RunningJobLister interface {
	ListRunning(ctx context.Context, limit int) ([]model.Job, error)
}

// JobSyncer reconciles one job with the inference service.
type JobSyncer interface {
	Sync(ctx context.Context, job *model.Job, source string) (*model.Job, error)
}

// JobSyncServiceOptions groups dependencies for JobSyncService.
type JobSyncServiceOptions struct {
	Jobs    RunningJobLister     // Required: job repository
	Syncer  JobSyncer            // Required: usually *CheckService
	Config  config.JobSyncConfig // Required: loop configuration
	Logger  *slog.Logger         // Optional: structured logger
	Metrics statsd.Sink          // Optional: metrics sink
}

// JobSyncService finishes running jobs in the background so they complete
// even when no client is reading them.
type JobSyncService struct {
	jobs    RunningJobLister
	syncer  JobSyncer
	config  config.JobSyncConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewJobSyncService constructs a new JobSyncService.
func NewJobSyncService(opts JobSyncServiceOptions) (*JobSyncService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("job repository is required")
	}
	if opts.Syncer == nil {
		return nil, errors.New("job syncer is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("job sync interval must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobSyncService{
		jobs:    opts.Jobs,
		syncer:  opts.Syncer,
		config:  opts.Config,
		logger:  logger.With("component", "job_sync_service"),
		metrics: opts.Metrics,
	}, nil
}

// Run ticks until the context is cancelled. Returns nil on context.Canceled.
func (s *JobSyncService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting job sync", "interval", s.config.Interval)
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "job sync stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !isContextCancellation(err) {
				s.logger.ErrorContext(ctx, "job sync tick failed", "error", err)
			}
		}
	}
}

// RunOnce syncs one batch of running jobs and reports how many failed.
// Individual sync failures are logged, not returned.
func (s *JobSyncService) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	jobs, err := s.jobs.ListRunning(ctx, s.config.BatchSize)
	if err != nil {
		return 0, err
	}

	var failed atomic.Int32
	var g errgroup.Group
	if s.config.Concurrency > 0 {
		g.SetLimit(s.config.Concurrency)
	}
	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			if _, err := s.syncer.Sync(ctx, job, metrics.SourceRunner); err != nil {
				failed.Add(1)
				s.logger.DebugContext(ctx, "job sync failed", "job_id", job.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	metrics.EmitTick(s.metrics, metrics.TickMetric{
		Loop:     metrics.SourceRunner,
		Jobs:     len(jobs),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	})
	return int(failed.Load()), nil
}
