// Package submit uploads a model file, starts a check run and hands the new
// job to the store and poller.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

// DefaultMaxBytes matches the server's default upload limit.
const DefaultMaxBytes int64 = 200 << 20

// API is the subset of the ifcore HTTP API used for submission.
type API interface {
	Upload(ctx context.Context, filename string, body io.Reader) (*model.UploadResponse, error)
	StartCheck(ctx context.Context, req model.StartCheckRequest) (*model.StartCheckResponse, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
}

// Tracker records submitted jobs.
type Tracker interface {
	TrackJob(model.Job)
	SetProjects([]model.Project)
}

// Starter starts the job poller. Start must be idempotent.
type Starter interface {
	Start()
}

// File is a model file to submit.
type File struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Options groups dependencies for Service.
type Options struct {
	API      API     // Required
	Store    Tracker // Required
	Poller   Starter // Required
	MaxBytes int64
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service submits model files for checking.
type Service struct {
	api      API
	store    Tracker
	poller   Starter
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
}

// New constructs a Service.
func New(opts Options) (*Service, error) {
	if opts.API == nil {
		return nil, errors.New("api client is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Poller == nil {
		return nil, errors.New("poller is required")
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:      opts.API,
		store:    opts.Store,
		poller:   opts.Poller,
		maxBytes: opts.MaxBytes,
		logger:   logger.With("component", "submit"),
		now:      opts.Now,
	}, nil
}

// Submit validates and uploads f, starts a check run, tracks the job as the
// active job and makes sure the poller is running. Validation happens before
// any network call. When the check run cannot be started no job is tracked;
// the uploaded project stays.
func (s *Service) Submit(ctx context.Context, f File) (*model.Job, error) {
	if err := model.ValidateModelFile(f.Name, f.Size, s.maxBytes); err != nil {
		return nil, err
	}
	if f.Reader == nil {
		return nil, apperrors.ValidationField("file", "No file provided")
	}

	up, err := s.api.Upload(ctx, f.Name, f.Reader)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", f.Name, err)
	}

	started, err := s.api.StartCheck(ctx, model.StartCheckRequest{ProjectID: up.ProjectID, FileURL: up.FileURL})
	if err != nil {
		return nil, fmt.Errorf("start check for project %s: %w", up.ProjectID, err)
	}
	if started.Status == model.JobStatusError || started.JobID == "" {
		msg := started.Error
		if msg == "" {
			msg = "check run was rejected"
		}
		return nil, apperrors.Upstream(msg)
	}

	status := started.Status
	if !status.Valid() {
		status = model.JobStatusRunning
	}
	now := s.now().UTC()
	job := model.Job{
		ID:        started.JobID,
		ProjectID: up.ProjectID,
		Status:    status,
		StartedAt: &now,
		FileURL:   &up.FileURL,
	}
	s.store.TrackJob(job)
	s.poller.Start()
	s.logger.InfoContext(ctx, "check submitted", "job_id", job.ID, "project_id", job.ProjectID, "file", f.Name)

	s.refreshProjects(ctx)
	return &job, nil
}

func (s *Service) refreshProjects(ctx context.Context) {
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "project list refresh failed", "error", err)
		return
	}
	s.store.SetProjects(projects)
}
