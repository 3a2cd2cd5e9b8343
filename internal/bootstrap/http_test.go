package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SerjoschDuering/ifcore-platform/config"
	httpx "github.com/SerjoschDuering/ifcore-platform/internal/http"
)

func TestBuildHTTPHandler(t *testing.T) {
	h := buildHTTPHandler(httpHandlerConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Services: httpx.RouterServices{},
		HTTP:     config.HTTPConfig{CompressionEnabled: true, CompressionLevel: 6},
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(httpx.HeaderRequestID))
}

func TestStartServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	server, err := startServer(serverOptions{
		Logger:         logger,
		Handler:        handler,
		Addr:           "127.0.0.1:0",
		MaxConnections: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, server)

	require.NoError(t, ShutdownHTTPServer(ShutdownConfig{Context: context.Background(), Server: server, Logger: logger}))
}

func TestStartServerListenError(t *testing.T) {
	_, err := startServer(serverOptions{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Handler: http.NotFoundHandler(),
		Addr:    "256.0.0.1:bad",
	})
	require.Error(t, err)
}

func TestStartHTTPServerRequiresConfig(t *testing.T) {
	_, err := StartHTTPServer(nil)
	require.Error(t, err)
}

func TestShutdownHTTPServerNil(t *testing.T) {
	require.NoError(t, ShutdownHTTPServer(ShutdownConfig{}))
}
