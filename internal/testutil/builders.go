// Package testutil provides database, Redis and fixture helpers for ifcore tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// ProjectRequestBuilder provides a fluent interface for building CreateProjectRequest values.
type ProjectRequestBuilder struct {
	req *model.CreateProjectRequest
}

// NewProjectRequest creates a builder for a shared project with a fresh id.
func NewProjectRequest() *ProjectRequestBuilder {
	id := uuid.NewString()
	return &ProjectRequestBuilder{
		req: &model.CreateProjectRequest{
			ID:      id,
			Name:    "duplex",
			FileURL: model.Locator(model.ObjectKey(id, "duplex.ifc")),
		},
	}
}

// WithOwner sets the owning user.
func (b *ProjectRequestBuilder) WithOwner(ownerID string) *ProjectRequestBuilder {
	b.req.OwnerID = &ownerID
	return b
}

// WithName sets the project name.
func (b *ProjectRequestBuilder) WithName(name string) *ProjectRequestBuilder {
	b.req.Name = name
	return b
}

// Build returns the request.
func (b *ProjectRequestBuilder) Build() *model.CreateProjectRequest {
	return b.req
}

// CheckResultBuilder builds CheckResult fixtures.
type CheckResultBuilder struct {
	c model.CheckResult
}

// NewCheckResult creates a passing check for team with a fresh id.
func NewCheckResult(name, team string) *CheckResultBuilder {
	return &CheckResultBuilder{c: model.CheckResult{
		ID:        uuid.NewString(),
		CheckName: name,
		Team:      team,
		Status:    model.CheckStatusPass,
		Summary:   name + ": ok",
		CreatedAt: TestTime(),
	}}
}

// WithStatus sets the aggregate status.
func (b *CheckResultBuilder) WithStatus(s model.CheckStatus) *CheckResultBuilder {
	b.c.Status = s
	return b
}

// WithJob sets job and project ids.
func (b *CheckResultBuilder) WithJob(jobID, projectID string) *CheckResultBuilder {
	b.c.JobID = jobID
	b.c.ProjectID = projectID
	return b
}

// Build returns the check.
func (b *CheckResultBuilder) Build() model.CheckResult {
	return b.c
}

// NewElementResult builds an element row under check. An empty elementID yields
// a row without a model element.
func NewElementResult(checkID, elementID string, status model.ElementStatus) model.ElementResult {
	e := model.ElementResult{
		ID:            uuid.NewString(),
		CheckResultID: checkID,
		CheckStatus:   status,
	}
	if elementID != "" {
		e.ElementID = &elementID
		typ := "IfcDoor"
		e.ElementType = &typ
	}
	return e
}

// InsertProject writes a project row directly and returns its id.
func InsertProject(t TestingTB, db *sql.DB, req *model.CreateProjectRequest) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx,
		`INSERT INTO projects (id, owner_id, name, file_url, created_at) VALUES ($1, $2, $3, $4, now())`,
		req.ID, req.OwnerID, req.Name, req.FileURL)
	if err != nil {
		t.Fatalf("Failed to insert project %s: %v", req.ID, err)
	}
	return req.ID
}

// InsertJob writes a job row with the given status and start time.
func InsertJob(t TestingTB, db *sql.DB, projectID string, status model.JobStatus, startedAt time.Time) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := uuid.NewString()
	var ext *string
	if status != model.JobStatusPending {
		v := fmt.Sprintf("ext-%s", id[:8])
		ext = &v
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO jobs (id, project_id, status, external_job_id, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, projectID, string(status), ext, startedAt)
	if err != nil {
		t.Fatalf("Failed to insert job: %v", err)
	}
	return id
}
