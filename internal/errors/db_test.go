package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError_NilError(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBError_ContextErrors(t *testing.T) {
	err := MapDBError(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.True(t, IsTimeout(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = MapDBError(context.Canceled)
	assert.True(t, IsCanceled(err))
}

func TestMapDBError_NoRows(t *testing.T) {
	err := MapDBError(pgx.ErrNoRows)
	assert.True(t, IsNotFound(err))
}

func TestMapDBError_PgErrors(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantCode  ErrorCode
		wantField string
		wantMsg   string
	}{
		{
			name:      "unique violation with column",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "id"},
			wantCode:  ErrCodeConflict,
			wantField: "id",
		},
		{
			name: "unique violation parsed from detail",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.UniqueViolation,
				Detail: "Key (external_job_id)=(abc) already exists.",
			},
			wantCode:  ErrCodeConflict,
			wantField: "external_job_id",
		},
		{
			name: "foreign key missing parent",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (project_id)=(p1) is not present in table "projects".`,
			},
			wantCode: ErrCodeForeignKey,
			wantMsg:  "The referenced project does not exist.",
		},
		{
			name: "foreign key parent still referenced",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (id)=(j1) is still referenced from table "check_results".`,
			},
			wantCode: ErrCodeForeignKey,
			wantMsg:  "Cannot delete because this item is in use by a check result.",
		},
		{
			name:     "foreign key falls back to table name",
			pgErr:    &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, TableName: "element_results"},
			wantCode: ErrCodeForeignKey,
			wantMsg:  "Cannot complete operation because the element result reference is invalid.",
		},
		{
			name:      "check violation",
			pgErr:     &pgconn.PgError{Code: pgerrcode.CheckViolation, ColumnName: "status"},
			wantCode:  ErrCodeValidation,
			wantField: "status",
		},
		{
			name:     "not null violation without column",
			pgErr:    &pgconn.PgError{Code: pgerrcode.NotNullViolation},
			wantCode: ErrCodeValidation,
			wantMsg:  "Invalid data. Please check your input.",
		},
		{
			name:     "unknown code",
			pgErr:    &pgconn.PgError{Code: pgerrcode.DiskFull},
			wantCode: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantField, appErr.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, appErr.Message)
			}
		})
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, MapDBError(plain))
}

func TestTableToDomain(t *testing.T) {
	assert.Equal(t, "project", tableToDomain(" Projects "))
	assert.Equal(t, "schema migrations", tableToDomain("schema_migrations"))
}
