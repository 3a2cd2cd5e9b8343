package httpx

import (
	"log/slog"
	"net/http"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Projects ProjectService
	Checks   CheckService
	Chat     ChatService
	Files    core.ObjectStore
	// UploadMaxBytes caps POST /api/upload bodies; 0 disables the cap.
	UploadMaxBytes int64
	Logger         *slog.Logger // optional
}

// NewRouter creates and configures the API router. Routes whose service is
// nil are not registered.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if services.Projects != nil {
		h := &ProjectHandlers{Svc: services.Projects, MaxBytes: services.UploadMaxBytes, Logger: logger}
		mux.HandleFunc("POST /api/upload", h.Upload)
		mux.HandleFunc("GET /api/projects", h.List)
		mux.HandleFunc("GET /api/projects/{id}", h.Get)
	}
	if services.Checks != nil {
		h := &CheckHandlers{Svc: services.Checks, Logger: logger}
		mux.HandleFunc("POST /api/checks/run", h.Run)
		mux.HandleFunc("GET /api/checks/jobs/{id}", h.GetJob)
	}
	if services.Chat != nil {
		mux.HandleFunc("POST /api/chat", (&ChatHandlers{Svc: services.Chat}).Chat)
	}
	if services.Files != nil {
		mux.HandleFunc("GET /api/files/{key...}", (&FileHandlers{Objects: services.Files, Logger: logger}).Get)
	}
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return mux
}
