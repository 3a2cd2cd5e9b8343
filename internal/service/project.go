package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/data"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/metrics"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/statsd"
)

// modelContentType is stored with every uploaded model file.
const modelContentType = "application/octet-stream"

// ProjectServiceOptions groups dependencies for ProjectService.
type ProjectServiceOptions struct {
	Projects core.ProjectRepository // Required: project repository
	Jobs     core.JobRepository     // Required: job repository (project detail)
	Objects  core.ObjectStore       // Required: model file storage
	MaxBytes int64                  // Optional: upload limit, 0 disables the check
	Logger   *slog.Logger           // Optional: structured logger
	Metrics  statsd.Sink            // Optional: metrics sink
}

// ProjectService handles model uploads and project reads.
type ProjectService struct {
	projects core.ProjectRepository
	jobs     core.JobRepository
	objects  core.ObjectStore
	maxBytes int64
	logger   *slog.Logger
	metrics  statsd.Sink
	newID    func() string
}

// NewProjectService constructs a new ProjectService.
func NewProjectService(opts ProjectServiceOptions) (*ProjectService, error) {
	if opts.Projects == nil {
		return nil, errors.New("project repository is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("job repository is required")
	}
	if opts.Objects == nil {
		return nil, errors.New("object store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectService{
		projects: opts.Projects,
		jobs:     opts.Jobs,
		objects:  opts.Objects,
		maxBytes: opts.MaxBytes,
		logger:   logger.With("component", "project_service"),
		metrics:  opts.Metrics,
		newID:    uuid.NewString,
	}, nil
}

// UploadRequest is one model file received from a client.
type UploadRequest struct {
	OwnerID  *string
	Filename string
	Size     int64
	Body     io.Reader
}

// Upload stores the model file and creates its project. Nothing is written
// when the file fails validation.
func (s *ProjectService) Upload(ctx context.Context, req UploadRequest) (*model.UploadResponse, error) {
	start := time.Now()
	if req.Body == nil {
		return nil, apperrors.ValidationField("file", "No file provided")
	}
	if err := model.ValidateModelFile(req.Filename, req.Size, s.maxBytes); err != nil {
		return nil, err
	}

	projectID := s.newID()
	key := model.ObjectKey(projectID, req.Filename)
	err := s.objects.Put(ctx, core.PutObjectParams{
		Key:         key,
		Body:        req.Body,
		Size:        req.Size,
		ContentType: modelContentType,
	})
	if err != nil {
		s.emit(metrics.ResultError, time.Since(start), err)
		return nil, fmt.Errorf("store model file: %w", err)
	}

	project, err := s.projects.Create(ctx, &model.CreateProjectRequest{
		ID:      projectID,
		OwnerID: req.OwnerID,
		Name:    model.ProjectNameFromFile(req.Filename),
		FileURL: model.Locator(key),
	})
	if err != nil {
		// The object is orphaned without its row.
		if delErr := s.objects.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned model file", "key", key, "error", delErr)
		}
		s.emit(metrics.ResultError, time.Since(start), err)
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.emit(metrics.ResultSuccess, time.Since(start), nil)
	s.logger.InfoContext(ctx, "model uploaded", "project_id", project.ID, "size", req.Size)
	return &model.UploadResponse{ProjectID: project.ID, FileURL: project.FileURL}, nil
}

func (s *ProjectService) emit(result string, d time.Duration, err error) {
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Source:     metrics.SourceProject,
		Transition: "created",
		Result:     result,
		Duration:   d,
		Err:        err,
	})
}

// List returns the owner's projects plus shared ones. Anonymous callers see
// shared projects only.
func (s *ProjectService) List(ctx context.Context, ownerID *string) ([]model.Project, error) {
	projects, err := s.projects.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

// Get returns the project with its jobs, newest first.
func (s *ProjectService) Get(ctx context.Context, id string) (*model.ProjectDetail, error) {
	if id == "" {
		return nil, apperrors.ValidationField("id", "id is required")
	}
	project, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, data.ErrProjectNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "Project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	jobs, err := s.jobs.ListByProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list project jobs: %w", err)
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return &model.ProjectDetail{Project: *project, Jobs: jobs}, nil
}
