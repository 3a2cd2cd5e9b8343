package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/data/pgxutil"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

var _ core.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo provides database operations for projects.
type ProjectRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewProjectRepo creates a new ProjectRepo. A nil TimeProvider uses the wall clock.
func NewProjectRepo(db *sql.DB, tp TimeProvider) *ProjectRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &ProjectRepo{DB: db, timeProvider: tp}
}

const projectColumns = `id, owner_id, name, file_url, ifc_schema, region, building_type, metadata, created_at`

// Create inserts a project and returns the stored row.
func (r *ProjectRepo) Create(ctx context.Context, req *model.CreateProjectRequest) (*model.Project, error) {
	if req == nil {
		return nil, apperrors.Validation("project request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO projects (id, owner_id, name, file_url, ifc_schema, region, building_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + projectColumns

	var project model.Project
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query,
			req.ID, req.OwnerID, req.Name, req.FileURL, req.IFCSchema, req.Region, req.BuildingType,
			nullableJSON(req.Metadata), r.timeProvider.Now(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		project, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Project])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", apperrors.MapDBError(err))
	}
	return &project, nil
}

// GetByID returns a project or ErrProjectNotFound.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var project model.Project
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, id)
		if err != nil {
			return err
		}
		defer rows.Close()

		project, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Project])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &project, nil
}

// List returns the owner's projects plus shared ones, newest first.
// A nil owner sees shared projects only.
func (r *ProjectRepo) List(ctx context.Context, ownerID *string) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id IS NULL`
	var args []any
	if ownerID != nil && *ownerID != "" {
		query += ` OR owner_id = $1`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY created_at DESC`

	var projects []model.Project
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		projects, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Project])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

// nullableJSON stores empty metadata as SQL NULL instead of an invalid empty document.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
