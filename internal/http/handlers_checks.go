package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

// CheckService is the check surface the handlers need.
type CheckService interface {
	Run(ctx context.Context, req model.StartCheckRequest) (*model.StartCheckResponse, error)
	GetJob(ctx context.Context, id string) (*model.JobWithResults, error)
}

// CheckHandlers starts checks and serves job reads.
type CheckHandlers struct {
	Svc    CheckService
	Logger *slog.Logger
}

// Run starts a check. Once a job exists a failure still answers with the
// job id and status "error".
func (h *CheckHandlers) Run(w http.ResponseWriter, r *http.Request) {
	var req model.StartCheckRequest
	if !DecodeJSONLenient(w, r, &req) {
		return
	}

	resp, err := h.Svc.Run(r.Context(), req)
	if err != nil {
		if h.Logger != nil && !apperrors.IsValidation(err) {
			h.Logger.ErrorContext(r.Context(), "check run failed", "project_id", req.ProjectID, "error", err)
		}
		if resp != nil {
			code, _ := statusForError(err)
			WriteJSON(w, code, resp)
			return
		}
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetJob returns a job with its results.
func (h *CheckHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Svc.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		if h.Logger != nil && !apperrors.IsNotFound(err) {
			h.Logger.ErrorContext(r.Context(), "get job failed", "job_id", r.PathValue("id"), "error", err)
		}
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}
