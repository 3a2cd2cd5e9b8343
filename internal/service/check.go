package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/data"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/metrics"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/statsd"
)

// Inference job statuses the sync acts on. Anything else leaves the job running.
const (
	inferenceDone  = "done"
	inferenceError = "error"
)

const msgStorageRead = "Failed to read file from storage"

// CheckServiceOptions groups dependencies for CheckService.
type CheckServiceOptions struct {
	Jobs      core.JobRepository    // Required: job repository
	Results   core.ResultRepository // Required: result repository
	Objects   core.ObjectStore      // Required: model file storage
	Inference core.InferenceClient  // Required: inference service client
	Cache     *core.JobCache        // Optional: terminal job cache
	Logger    *slog.Logger          // Optional: structured logger
	Metrics   statsd.Sink           // Optional: metrics sink
}

// CheckService starts compliance checks and reconciles running jobs with the
// inference service.
type CheckService struct {
	jobs      core.JobRepository
	results   core.ResultRepository
	objects   core.ObjectStore
	inference core.InferenceClient
	cache     *core.JobCache
	logger    *slog.Logger
	metrics   statsd.Sink
	syncs     singleflight.Group
}

// NewCheckService constructs a new CheckService.
func NewCheckService(opts CheckServiceOptions) (*CheckService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("job repository is required")
	}
	if opts.Results == nil {
		return nil, errors.New("result repository is required")
	}
	if opts.Objects == nil {
		return nil, errors.New("object store is required")
	}
	if opts.Inference == nil {
		return nil, errors.New("inference client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckService{
		jobs:      opts.Jobs,
		results:   opts.Results,
		objects:   opts.Objects,
		inference: opts.Inference,
		cache:     opts.Cache,
		logger:    logger.With("component", "check_service"),
		metrics:   opts.Metrics,
	}, nil
}

// Run creates a job for the project and hands its model to the inference
// service. Once a job row exists, failures return both an error response
// carrying the job id and the error that explains it.
func (s *CheckService) Run(ctx context.Context, req model.StartCheckRequest) (*model.StartCheckResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	key, ok := model.KeyFromLocator(req.FileURL)
	if !ok {
		return nil, apperrors.ValidationField("file_url", "file_url must be a storage locator")
	}

	start := time.Now()
	job, err := s.jobs.Create(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	payload, err := s.readModel(ctx, key)
	if err != nil {
		s.logger.ErrorContext(ctx, "model read failed", "job_id", job.ID, "key", key, "error", err)
		return s.failRun(ctx, job.ID, start, apperrors.Wrap(err, apperrors.ErrCodeInternal, msgStorageRead))
	}

	externalID, err := s.inference.SubmitCheck(ctx, req.ProjectID, payload)
	if err != nil {
		if apperrors.IsTimeout(err) {
			err = apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "inference service unreachable")
		}
		s.logger.WarnContext(ctx, "inference submit failed", "job_id", job.ID, "error", err)
		return s.failRun(ctx, job.ID, start, err)
	}

	if err := s.jobs.MarkRunning(ctx, job.ID, externalID); err != nil {
		return s.failRun(ctx, job.ID, start, fmt.Errorf("mark job running: %w", err))
	}

	s.emit(metrics.SourceSubmit, string(model.JobStatusRunning), metrics.ResultSuccess, time.Since(start), nil)
	s.logger.InfoContext(ctx, "check started", "job_id", job.ID, "external_job_id", externalID)
	return &model.StartCheckResponse{JobID: job.ID, Status: model.JobStatusRunning}, nil
}

func (s *CheckService) failRun(ctx context.Context, jobID string, start time.Time, cause error) (*model.StartCheckResponse, error) {
	if _, err := s.jobs.MarkError(context.WithoutCancel(ctx), jobID); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark job error", "job_id", jobID, "error", err)
	}
	s.emit(metrics.SourceSubmit, string(model.JobStatusError), metrics.ResultError, time.Since(start), cause)
	msg := cause.Error()
	var appErr *apperrors.AppError
	if errors.As(cause, &appErr) {
		msg = appErr.Message
	}
	return &model.StartCheckResponse{JobID: jobID, Status: model.JobStatusError, Error: msg}, cause
}

func (s *CheckService) readModel(ctx context.Context, key string) (string, error) {
	obj, err := s.objects.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Body.Close()
	raw, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", fmt.Errorf("read object %s: %w", key, err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// GetJob returns the job with its results. A running job is reconciled with
// the inference service first; failures to reach it are logged and the
// stored state is returned.
func (s *CheckService) GetJob(ctx context.Context, id string) (*model.JobWithResults, error) {
	if id == "" {
		return nil, apperrors.ValidationField("id", "id is required")
	}
	if cached := s.cache.Get(ctx, id); cached != nil {
		return cached, nil
	}

	job, err := s.jobs.GetByID(ctx, id)
	if errors.Is(err, data.ErrJobNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "Job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	if needsSync(job) {
		synced, syncErr := s.Sync(ctx, job, metrics.SourceLazy)
		if syncErr != nil {
			s.logger.DebugContext(ctx, "lazy sync failed", "job_id", id, "error", syncErr)
		} else {
			job = synced
		}
	}

	out := &model.JobWithResults{
		Job:            *job,
		CheckResults:   []model.CheckResult{},
		ElementResults: []model.ElementResult{},
	}
	if job.Status == model.JobStatusDone {
		if out.CheckResults, err = s.results.ListChecksByJob(ctx, id); err != nil {
			return nil, fmt.Errorf("list check results: %w", err)
		}
		if out.ElementResults, err = s.results.ListElementsByJob(ctx, id); err != nil {
			return nil, fmt.Errorf("list element results: %w", err)
		}
	}
	if job.Status.IsTerminal() {
		if err := s.cache.Put(ctx, out); err != nil {
			s.logger.WarnContext(ctx, "failed to cache job", "job_id", id, "error", err)
		}
	}
	return out, nil
}

func needsSync(job *model.Job) bool {
	return job.Status == model.JobStatusRunning && job.ExternalJobID != nil && *job.ExternalJobID != ""
}

// Sync reconciles one running job with the inference service and returns the
// job as stored afterwards. Concurrent syncs of the same job share one call.
func (s *CheckService) Sync(ctx context.Context, job *model.Job, source string) (*model.Job, error) {
	if job == nil || !needsSync(job) {
		return job, nil
	}
	v, err, _ := s.syncs.Do(job.ID, func() (any, error) {
		return s.sync(ctx, job, source)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Job), nil
}

func (s *CheckService) sync(ctx context.Context, job *model.Job, source string) (*model.Job, error) {
	start := time.Now()
	remote, err := s.inference.GetJob(ctx, *job.ExternalJobID)
	if err != nil {
		return nil, fmt.Errorf("fetch inference job %s: %w", *job.ExternalJobID, err)
	}

	var changed bool
	switch remote.Status {
	case inferenceDone:
		changed, err = s.jobs.Complete(ctx, core.CompleteJobParams{
			JobID:          job.ID,
			CheckResults:   remote.CheckResults,
			ElementResults: remote.ElementResults,
		})
	case inferenceError:
		if remote.Error != "" {
			s.logger.InfoContext(ctx, "inference job failed", "job_id", job.ID, "reason", remote.Error)
		}
		changed, err = s.jobs.MarkError(ctx, job.ID)
	default:
		return job, nil
	}
	if err != nil {
		s.emit(source, remote.Status, metrics.ResultError, time.Since(start), err)
		return nil, fmt.Errorf("apply %s to job %s: %w", remote.Status, job.ID, err)
	}
	if !changed {
		s.emit(source, remote.Status, metrics.ResultNoop, 0, nil)
	} else {
		s.emit(source, remote.Status, metrics.ResultSuccess, time.Since(start), nil)
	}

	updated, err := s.jobs.GetByID(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("reload job %s: %w", job.ID, err)
	}
	return updated, nil
}

func (s *CheckService) emit(source, transition, result string, d time.Duration, err error) {
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Source:     source,
		Transition: transition,
		Result:     result,
		Duration:   d,
		Err:        err,
	})
}
