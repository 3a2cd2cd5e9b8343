package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SerjoschDuering/ifcore-platform/config"
	obserrors "github.com/SerjoschDuering/ifcore-platform/internal/observability/errors"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/metrics"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/statsd"
)

// StaleJobFailer fails jobs that never reached a terminal state.
type StaleJobFailer interface {
	FailStale(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo    StaleJobFailer      // Required: job repository
	Config  config.ReaperConfig // Required: reaper configuration
	Logger  *slog.Logger        // Optional: structured logger
	Metrics statsd.Sink         // Optional: metrics sink (StatsD-compatible)
}

// ReaperService fails pending or running jobs older than the configured max
// age, so a lost inference job never leaves a client polling forever. It
// never deletes rows.
type ReaperService struct {
	repo    StaleJobFailer
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("job repository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reaper_service")
		logger.Debug("ReaperService initialized",
			"interval", opts.Config.Interval,
			"max_age", opts.Config.MaxAge,
			"batch_size", opts.Config.BatchSize,
		)
	}

	return &ReaperService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)
	}

	// Jitter keeps several instances from sweeping in lockstep.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logCleanupError(err, "initial cleanup")
	}

	return s.runLoop(ctx, ticker)
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (s *ReaperService) runLoop(ctx context.Context, ticker *time.Ticker) error {
	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logCleanupError(err, "cleanup")
			}
		}
	}
}

// RunOnce fails stale jobs in batches until a batch comes back empty and
// returns how many jobs it failed.
func (s *ReaperService) RunOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	var total int64
	var err error
	for {
		var count int64
		count, err = s.repo.FailStale(ctx, s.config.MaxAge, s.config.BatchSize)
		if err != nil {
			break
		}
		total += count
		if count == 0 {
			break
		}
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
	}

	s.emitCleanupMetrics(total, suppressContextCancellation(err), time.Since(start))

	if total > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "failed stale jobs", "count", total, "max_age", s.config.MaxAge)
	}
	if err != nil {
		if isContextCancellation(err) {
			return total, context.Canceled
		}
		return total, fmt.Errorf("fail stale jobs: %w", err)
	}
	return total, nil
}

func (s *ReaperService) emitCleanupMetrics(count int64, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	} else if count == 0 {
		result = metrics.ResultNoop
	}

	tags := map[string]string{"result": result}
	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count("reaper.cleanup", 1, tags)
	if elapsed > 0 {
		s.metrics.Timing("reaper.cleanup_duration", elapsed, metrics.CloneTags(tags))
	}
	if err == nil && count > 0 {
		s.metrics.Count("reaper.jobs_processed", count, metrics.CloneTags(tags))
		metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
			Source:     metrics.SourceReaper,
			Transition: "error",
			Result:     metrics.ResultSuccess,
		})
	}
	if err == nil {
		s.metrics.Gauge("reaper.last_success_epoch", float64(time.Now().Unix()), nil)
	}
}

func (s *ReaperService) logCleanupError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}

	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}

	s.logger.Error(label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
