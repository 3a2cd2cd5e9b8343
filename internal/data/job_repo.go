package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/data/pgxutil"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

var _ core.JobRepository = (*JobRepo)(nil)

// JobRepo provides database operations for compliance check jobs and the
// results ingested when they finish.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewJobRepo creates a new JobRepo. A nil TimeProvider uses the wall clock.
func NewJobRepo(db *sql.DB, tp TimeProvider) *JobRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &JobRepo{DB: db, timeProvider: tp}
}

const jobColumns = `j.id, j.project_id, j.status, j.external_job_id, j.started_at, j.completed_at`

// Create inserts a pending job for the project.
func (r *JobRepo) Create(ctx context.Context, projectID string) (*model.Job, error) {
	if projectID == "" {
		return nil, apperrors.ValidationField("project_id", "project_id is required")
	}

	query := `
		INSERT INTO jobs AS j (id, project_id, status, started_at)
		VALUES ($1, $2, 'pending', $3)
		RETURNING ` + jobColumns

	job, err := r.queryOne(ctx, query, uuid.NewString(), projectID, r.timeProvider.Now())
	if err != nil {
		return nil, fmt.Errorf("create job: %w", apperrors.MapDBError(err))
	}
	return job, nil
}

// GetByID returns a job joined with its project's name and file locator.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	query := `
		SELECT ` + jobColumns + `, p.name AS project_name, p.file_url AS file_url
		FROM jobs j
		LEFT JOIN projects p ON p.id = j.project_id
		WHERE j.id = $1`

	job, err := r.queryOne(ctx, query, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListByProject returns the project's jobs, newest first.
func (r *JobRepo) ListByProject(ctx context.Context, projectID string) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.project_id = $1 ORDER BY j.started_at DESC NULLS LAST`
	jobs, err := r.queryMany(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list jobs by project: %w", err)
	}
	return jobs, nil
}

// MarkRunning records the external job id on a pending job.
func (r *JobRepo) MarkRunning(ctx context.Context, id, externalJobID string) error {
	if externalJobID == "" {
		return apperrors.ValidationField("external_job_id", "external_job_id is required")
	}
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE jobs SET status = 'running', external_job_id = $2
			WHERE id = $1 AND status = 'pending'`, id, externalJobID)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	if affected == 0 {
		return r.transitionMiss(ctx, id, ErrJobNotPending)
	}
	return nil
}

// MarkError fails a non-terminal job and stamps its completion time.
func (r *JobRepo) MarkError(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE jobs SET status = 'error', completed_at = $2
			WHERE id = $1 AND status IN ('pending', 'running')`, id, r.timeProvider.Now())
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("mark job error: %w", err)
	}
	if affected == 0 {
		if missErr := r.transitionMiss(ctx, id, model.ErrJobTerminal); !errors.Is(missErr, model.ErrJobTerminal) {
			return false, missErr
		}
		return false, nil
	}
	return true, nil
}

// Complete marks the job done and stores its results in one transaction.
// Check rows are rewritten to the local job and project ids. Element rows
// whose check is not part of the batch are dropped.
func (r *JobRepo) Complete(ctx context.Context, params core.CompleteJobParams) (bool, error) {
	if params.JobID == "" {
		return false, apperrors.ValidationField("job_id", "job_id is required")
	}

	var completed bool
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			var projectID string
			err := tx.QueryRow(ctx, `
				UPDATE jobs SET status = 'done', completed_at = $2
				WHERE id = $1 AND status IN ('pending', 'running')
				RETURNING project_id`, params.JobID, r.timeProvider.Now()).Scan(&projectID)
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			if err != nil {
				return err
			}
			completed = true
			return insertResults(ctx, tx, resultBatch{
				JobID:     params.JobID,
				ProjectID: projectID,
				Checks:    params.CheckResults,
				Elements:  params.ElementResults,
				Now:       r.timeProvider.Now(),
			})
		},
	})
	if err != nil {
		return false, fmt.Errorf("complete job: %w", apperrors.MapDBError(err))
	}
	if !completed {
		if missErr := r.transitionMiss(ctx, params.JobID, model.ErrJobTerminal); !errors.Is(missErr, model.ErrJobTerminal) {
			return false, missErr
		}
	}
	return completed, nil
}

type resultBatch struct {
	JobID     string
	ProjectID string
	Checks    []model.CheckResult
	Elements  []model.ElementResult
	Now       time.Time
}

func insertResults(ctx context.Context, tx pgx.Tx, b resultBatch) error {
	if len(b.Checks) == 0 {
		return nil
	}

	known := make(map[string]struct{}, len(b.Checks))
	checkRows := make([][]any, 0, len(b.Checks))
	for _, c := range b.Checks {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, dup := known[c.ID]; dup {
			continue
		}
		known[c.ID] = struct{}{}
		created := c.CreatedAt
		if created.IsZero() {
			created = b.Now
		}
		checkRows = append(checkRows, []any{
			c.ID, b.JobID, b.ProjectID, c.CheckName, c.Team, string(c.Status), c.Summary, c.HasElements, created,
		})
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"check_results"},
		[]string{"id", "job_id", "project_id", "check_name", "team", "status", "summary", "has_elements", "created_at"},
		pgx.CopyFromRows(checkRows),
	); err != nil {
		return fmt.Errorf("copy check results: %w", err)
	}

	elementRows := make([][]any, 0, len(b.Elements))
	for _, e := range b.Elements {
		if _, ok := known[e.CheckResultID]; !ok {
			continue
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		elementRows = append(elementRows, []any{
			e.ID, e.CheckResultID, e.ElementID, e.ElementType, e.ElementName, e.ElementNameLong,
			string(e.CheckStatus), e.ActualValue, e.RequiredValue, e.Comment, e.Log,
		})
	}
	if len(elementRows) == 0 {
		return nil
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"element_results"},
		[]string{
			"id", "check_result_id", "element_id", "element_type", "element_name", "element_name_long",
			"check_status", "actual_value", "required_value", "comment", "log",
		},
		pgx.CopyFromRows(elementRows),
	); err != nil {
		return fmt.Errorf("copy element results: %w", err)
	}
	return nil
}

// ListRunning returns running jobs with an external id, oldest first.
func (r *JobRepo) ListRunning(ctx context.Context, limit int) ([]model.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + jobColumns + ` FROM jobs j
		WHERE j.status = 'running' AND j.external_job_id IS NOT NULL
		ORDER BY j.started_at ASC
		LIMIT $1`
	jobs, err := r.queryMany(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list running jobs: %w", err)
	}
	return jobs, nil
}

// FailStale fails up to batchSize active jobs started before now-maxAge.
func (r *JobRepo) FailStale(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if maxAge <= 0 {
		return 0, apperrors.Validation("max age must be positive")
	}
	if batchSize <= 0 {
		batchSize = 1000
	}
	now := r.timeProvider.Now()
	cutoff := now.Add(-maxAge)

	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE jobs SET status = 'error', completed_at = $3
			WHERE id IN (
				SELECT id FROM jobs
				WHERE status IN ('pending', 'running') AND started_at < $1
				ORDER BY started_at
				LIMIT $2
				FOR UPDATE SKIP LOCKED
			)`, cutoff, batchSize, now)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("fail stale jobs: %w", err)
	}
	return affected, nil
}

// transitionMiss explains a guarded UPDATE that touched no rows: the job is
// either missing or in a state the transition does not accept.
func (r *JobRepo) transitionMiss(ctx context.Context, id string, stateErr error) error {
	job, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return model.ErrJobTerminal
	}
	return stateErr
}

func (r *JobRepo) queryOne(ctx context.Context, query string, args ...any) (*model.Job, error) {
	var job model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		job, err = pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.Job])
		return err
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepo) queryMany(ctx context.Context, query string, args ...any) ([]model.Job, error) {
	var jobs []model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		jobs, err = pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Job])
		return err
	})
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return jobs, nil
}
