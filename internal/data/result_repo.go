package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/data/pgxutil"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

var _ core.ResultRepository = (*ResultRepo)(nil)

// ResultRepo reads check and element results.
type ResultRepo struct {
	DB *sql.DB
}

// NewResultRepo creates a new ResultRepo.
func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{DB: db}
}

// ListChecksByJob returns a job's check results ordered by team then check name.
func (r *ResultRepo) ListChecksByJob(ctx context.Context, jobID string) ([]model.CheckResult, error) {
	query := `
		SELECT id, job_id, project_id, check_name, team, status, summary, has_elements, created_at
		FROM check_results
		WHERE job_id = $1
		ORDER BY team, check_name, id`

	var checks []model.CheckResult
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, jobID)
		if err != nil {
			return err
		}
		checks, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.CheckResult])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list check results: %w", err)
	}
	if checks == nil {
		checks = []model.CheckResult{}
	}
	return checks, nil
}

// ListElementsByJob returns the element results of every check in the job.
func (r *ResultRepo) ListElementsByJob(ctx context.Context, jobID string) ([]model.ElementResult, error) {
	query := `
		SELECT e.id, e.check_result_id, e.element_id, e.element_type, e.element_name, e.element_name_long,
		       e.check_status, e.actual_value, e.required_value, e.comment, e.log
		FROM element_results e
		JOIN check_results c ON c.id = e.check_result_id
		WHERE c.job_id = $1
		ORDER BY c.team, c.check_name, e.id`

	var elements []model.ElementResult
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, jobID)
		if err != nil {
			return err
		}
		elements, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ElementResult])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list element results: %w", err)
	}
	if elements == nil {
		elements = []model.ElementResult{}
	}
	return elements, nil
}
