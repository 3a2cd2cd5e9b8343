// Package httpx serves the ifcore JSON API.
package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
	"github.com/SerjoschDuering/ifcore-platform/internal/service"
)

// ProjectService is the project surface the handlers need.
type ProjectService interface {
	Upload(ctx context.Context, req service.UploadRequest) (*model.UploadResponse, error)
	List(ctx context.Context, ownerID *string) ([]model.Project, error)
	Get(ctx context.Context, id string) (*model.ProjectDetail, error)
}

// ProjectHandlers serves uploads and project reads.
type ProjectHandlers struct {
	Svc      ProjectService
	MaxBytes int64
	Logger   *slog.Logger
}

var errNoFile = apperrors.ValidationField(uploadFormField, "No file provided")

// Upload accepts a multipart model file in the "file" field.
func (h *ProjectHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	if h.MaxBytes > 0 {
		if r.ContentLength > h.MaxBytes+multipartOverhead {
			h.writeTooLarge(w)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeTooLarge(w)
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "no_file", Err: errNoFile})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "no_file", Err: errNoFile})
		return
	}
	defer file.Close()

	resp, err := h.Svc.Upload(r.Context(), service.UploadRequest{
		OwnerID:  ownerFromRequest(r),
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		if apperrors.IsValidation(err) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_file", Err: err})
			return
		}
		h.logError(r, "upload failed", err)
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *ProjectHandlers) writeTooLarge(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusBadRequest,
		ErrCode: "invalid_file",
		Err:     apperrors.Validationf("File exceeds the %d byte upload limit", h.MaxBytes),
	})
}

// List returns the caller's projects plus shared ones.
func (h *ProjectHandlers) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Svc.List(r.Context(), ownerFromRequest(r))
	if err != nil {
		h.logError(r, "list projects failed", err)
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, projects)
}

// Get returns one project with its jobs.
func (h *ProjectHandlers) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if !apperrors.IsNotFound(err) {
			h.logError(r, "get project failed", err)
		}
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, project)
}

func (h *ProjectHandlers) logError(r *http.Request, msg string, err error) {
	if h.Logger != nil {
		h.Logger.ErrorContext(r.Context(), msg, "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}
