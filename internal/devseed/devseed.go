// Package devseed loads a shared demo project with finished check results so
// a fresh environment has something to browse.
package devseed

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/data"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// DemoProjectName names the seeded shared project. Seeding is skipped when a
// shared project with this name already exists.
const DemoProjectName = "Demo Building"

const demoFilename = "demo.ifc"

//go:embed demo.ifc
var demoModel []byte

// DemoModel returns the embedded demo IFC file.
func DemoModel() []byte { return bytes.Clone(demoModel) }

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Projects core.ProjectRepository
	Jobs     core.JobRepository
	// Objects receives the demo model file. Optional; without it the project
	// points at a file that does not exist.
	Objects core.ObjectStore
}

// NewServices constructs the repositories used for seeding from db.
func NewServices(db *sql.DB, objects core.ObjectStore) Services {
	return Services{
		Projects: data.NewProjectRepo(db, nil),
		Jobs:     data.NewJobRepo(db, nil),
		Objects:  objects,
	}
}

// Result describes what Run did.
type Result struct {
	ProjectID string
	JobID     string
	Skipped   bool
}

// Run seeds the demo project and a finished job. It is idempotent.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) (Result, error) {
	if svcs.Projects == nil || svcs.Jobs == nil {
		return Result{}, errors.New("project and job repositories are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	shared, err := svcs.Projects.List(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("list shared projects: %w", err)
	}
	for _, p := range shared {
		if p.Name == DemoProjectName {
			logger.InfoContext(ctx, "demo project already seeded", "project_id", p.ID)
			return Result{ProjectID: p.ID, Skipped: true}, nil
		}
	}

	projectID := uuid.NewString()
	key := model.ObjectKey(projectID, demoFilename)
	if svcs.Objects != nil {
		if err = svcs.Objects.Put(ctx, core.PutObjectParams{
			Key:         key,
			Body:        bytes.NewReader(demoModel),
			Size:        int64(len(demoModel)),
			ContentType: "application/octet-stream",
		}); err != nil {
			return Result{}, fmt.Errorf("store demo model: %w", err)
		}
	}

	schema := "IFC4"
	project, err := svcs.Projects.Create(ctx, &model.CreateProjectRequest{
		ID:        projectID,
		Name:      DemoProjectName,
		FileURL:   model.Locator(key),
		IFCSchema: &schema,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create demo project: %w", err)
	}

	job, err := svcs.Jobs.Create(ctx, project.ID)
	if err != nil {
		return Result{}, fmt.Errorf("create demo job: %w", err)
	}

	checks, elements := DemoResults(job.ID, project.ID)
	if _, err = svcs.Jobs.Complete(ctx, core.CompleteJobParams{
		JobID:          job.ID,
		CheckResults:   checks,
		ElementResults: elements,
	}); err != nil {
		return Result{}, fmt.Errorf("complete demo job: %w", err)
	}

	logger.InfoContext(ctx, "seeded demo project",
		"project_id", project.ID,
		"job_id", job.ID,
		"checks", len(checks),
		"elements", len(elements),
	)
	return Result{ProjectID: project.ID, JobID: job.ID}, nil
}

type demoElement struct {
	id, ifcType, name string
	status            model.ElementStatus
	actual, required  string
}

type demoCheck struct {
	name, team string
	elements   []demoElement
}

var demoChecks = []demoCheck{
	{
		name: "check_door_width",
		team: "demo",
		elements: []demoElement{
			{"3vDoor000000000000000A", "IfcDoor", "Entrance Door", model.ElementStatusFail, "0.78 m", ">= 0.80 m"},
		},
	},
	{
		name: "check_room_area",
		team: "team-d",
		elements: []demoElement{
			{"3vSpce000000000000000A", "IfcSpace", "Living Room", model.ElementStatusPass, "21.4 m2", ">= 14.0 m2"},
		},
	},
	{
		name: "check_wall_u_value",
		team: "lux-ai",
		elements: []demoElement{
			{"3vWall000000000000000A", "IfcWall", "Wall North", model.ElementStatusPass, "0.24 W/m2K", "<= 0.28 W/m2K"},
			{"3vWall000000000000000B", "IfcWall", "Wall South", model.ElementStatusWarning, "0.28 W/m2K", "<= 0.28 W/m2K"},
			{"3vWind000000000000000A", "IfcWindow", "Window East", model.ElementStatusBlocked, "", "<= 1.40 W/m2K"},
		},
	},
	{
		name: "check_slab_thickness",
		team: "Mastodonte",
		elements: []demoElement{
			{"3vSlab000000000000000A", "IfcSlab", "Ground Slab", model.ElementStatusPass, "0.25 m", ">= 0.20 m"},
		},
	},
}

// DemoResults builds the demo check and element results for a job. Check
// status and summary are derived from the element outcomes.
func DemoResults(jobID, projectID string) ([]model.CheckResult, []model.ElementResult) {
	checks := make([]model.CheckResult, 0, len(demoChecks))
	var elements []model.ElementResult
	for _, dc := range demoChecks {
		checkID := uuid.NewString()
		rows := make([]model.ElementResult, 0, len(dc.elements))
		for _, de := range dc.elements {
			rows = append(rows, model.ElementResult{
				ID:            uuid.NewString(),
				CheckResultID: checkID,
				ElementID:     strPtr(de.id),
				ElementType:   strPtr(de.ifcType),
				ElementName:   strPtr(de.name),
				CheckStatus:   de.status,
				ActualValue:   optional(de.actual),
				RequiredValue: optional(de.required),
			})
		}
		checks = append(checks, model.CheckResult{
			ID:          checkID,
			JobID:       jobID,
			ProjectID:   projectID,
			CheckName:   dc.name,
			Team:        dc.team,
			Status:      model.AggregateStatus(rows),
			Summary:     model.BuildSummary(rows),
			HasElements: len(rows) > 0,
		})
		elements = append(elements, rows...)
	}
	return checks, elements
}

func strPtr(s string) *string { return &s }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
