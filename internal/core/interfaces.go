package core

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// This file contains repository and gateway interface definitions (ports in hexagonal architecture).
// Service implementations depend on these interfaces, not concrete implementations.

// ProjectRepository defines the interface for project data operations.
type ProjectRepository interface {
	Create(ctx context.Context, req *model.CreateProjectRequest) (*model.Project, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// List returns the owner's projects plus shared ones; a nil owner sees shared projects only.
	List(ctx context.Context, ownerID *string) ([]model.Project, error)
}

// CompleteJobParams groups the results ingested when a job finishes.
type CompleteJobParams struct {
	JobID          string
	CheckResults   []model.CheckResult
	ElementResults []model.ElementResult
}

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	Create(ctx context.Context, projectID string) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Job, error)
	// MarkRunning moves a pending job to running and records the external job id.
	MarkRunning(ctx context.Context, id, externalJobID string) error
	// MarkError fails a non-terminal job. It reports false when the job was already terminal.
	MarkError(ctx context.Context, id string) (bool, error)
	// Complete stores results and marks the job done atomically. It reports false,
	// without writing anything, when the job was already terminal.
	Complete(ctx context.Context, params CompleteJobParams) (bool, error)
	// ListRunning returns running jobs that carry an external job id, oldest first.
	ListRunning(ctx context.Context, limit int) ([]model.Job, error)
	// FailStale fails pending or running jobs started before now-maxAge.
	FailStale(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}

// ResultRepository reads ingested results.
type ResultRepository interface {
	ListChecksByJob(ctx context.Context, jobID string) ([]model.CheckResult, error)
	ListElementsByJob(ctx context.Context, jobID string) ([]model.ElementResult, error)
}

// ErrObjectNotFound is returned by ObjectStore.Get for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// Object is a readable stored object. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	ETag        string
}

// PutObjectParams groups the inputs of ObjectStore.Put.
type PutObjectParams struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// ObjectStore holds uploaded model files.
type ObjectStore interface {
	Put(ctx context.Context, params PutObjectParams) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// InferenceJob is the inference service's view of a job.
type InferenceJob struct {
	ID             string
	Status         string
	CheckResults   []model.CheckResult
	ElementResults []model.ElementResult
	Error          string
}

// InferenceClient talks to the external service that runs the checks.
type InferenceClient interface {
	// SubmitCheck hands the base64 model over and returns the external job id.
	SubmitCheck(ctx context.Context, projectID, modelB64 string) (string, error)
	GetJob(ctx context.Context, externalJobID string) (*InferenceJob, error)
	Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error)
}
