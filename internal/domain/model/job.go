// Package model defines the core data types shared by the ifcore API and the session core.
package model

import (
	"errors"
	"time"
)

// JobStatus represents the lifecycle state of a compliance check job.
type JobStatus string

const (
	// JobStatusPending indicates the job row exists but has not been handed to the inference service.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the inference service accepted the job.
	JobStatusRunning JobStatus = "running"
	// JobStatusDone indicates results were ingested.
	JobStatusDone JobStatus = "done"
	// JobStatusError indicates the job failed; it carries no results.
	JobStatusError JobStatus = "error"
)

// ErrJobTerminal is returned when a transition is attempted on a done or error job.
var ErrJobTerminal = errors.New("job already in terminal state")

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusRunning || s == JobStatusDone || s == JobStatusError
}

// IsTerminal reports whether no further transition may happen.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// Job is one compliance check run against a project's model file.
type Job struct {
	ID            string     `json:"id"                        db:"id"`
	ProjectID     string     `json:"project_id"                db:"project_id"`
	Status        JobStatus  `json:"status"                    db:"status"`
	ExternalJobID *string    `json:"external_job_id,omitempty" db:"external_job_id"`
	StartedAt     *time.Time `json:"started_at,omitempty"      db:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"    db:"completed_at"`
	// ProjectName and FileURL are joined from the owning project on single-job reads.
	ProjectName *string `json:"project_name,omitempty" db:"project_name"`
	FileURL     *string `json:"file_url,omitempty"     db:"file_url"`
}

// JobWithResults is a job plus everything the inference service reported for it.
type JobWithResults struct {
	Job
	CheckResults   []CheckResult   `json:"check_results"`
	ElementResults []ElementResult `json:"element_results"`
}

// StartCheckRequest asks the API to run all checks against an uploaded model.
type StartCheckRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	FileURL   string `json:"file_url"   validate:"required,startswith=r2://"`
}

// Validate checks required fields.
func (r *StartCheckRequest) Validate() error {
	return ValidateStruct(r)
}

// StartCheckResponse is returned by POST /api/checks/run.
type StartCheckResponse struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Error  string    `json:"error,omitempty"`
}
