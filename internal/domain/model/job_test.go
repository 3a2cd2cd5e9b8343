package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

func TestJobStatus(t *testing.T) {
	tests := []struct {
		status   JobStatus
		valid    bool
		terminal bool
	}{
		{JobStatusPending, true, false},
		{JobStatusRunning, true, false},
		{JobStatusDone, true, true},
		{JobStatusError, true, true},
		{"completed", false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestStartCheckRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := StartCheckRequest{ProjectID: "p1", FileURL: "r2://ifc/p1/a.ifc"}
		require.NoError(t, req.Validate())
	})

	t.Run("missing project", func(t *testing.T) {
		req := StartCheckRequest{FileURL: "r2://ifc/p1/a.ifc"}
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "project_id", apperrors.GetField(err))
	})

	t.Run("foreign locator", func(t *testing.T) {
		req := StartCheckRequest{ProjectID: "p1", FileURL: "https://example.com/a.ifc"}
		err := req.Validate()
		require.Error(t, err)
		assert.Equal(t, "file_url", apperrors.GetField(err))
	})
}

func TestCheckAndElementStatusValid(t *testing.T) {
	assert.True(t, CheckStatusWarning.Valid())
	assert.False(t, CheckStatus("blocked").Valid())
	assert.True(t, ElementStatusLog.Valid())
	assert.False(t, ElementStatus("error").Valid())
}
