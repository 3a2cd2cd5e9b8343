package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

// FileHandlers streams stored model files.
type FileHandlers struct {
	Objects core.ObjectStore
	Logger  *slog.Logger
}

// Get streams the object at {key...}.
func (h *FileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("key is required")})
		return
	}

	obj, err := h.Objects.Get(r.Context(), key)
	if errors.Is(err, core.ErrObjectNotFound) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: apperrors.NotFound("File not found")})
		return
	}
	if err != nil {
		if h.Logger != nil {
			h.Logger.ErrorContext(r.Context(), "read object failed", "key", key, "error", err)
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "storage_failed", Err: apperrors.Internal("Failed to read file from storage")})
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if obj.ETag != "" {
		w.Header().Set("ETag", strconv.Quote(obj.ETag))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil && h.Logger != nil {
		h.Logger.DebugContext(r.Context(), "file stream interrupted", "key", key, "error", err)
	}
}
