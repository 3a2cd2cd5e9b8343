package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SerjoschDuering/ifcore-platform/config"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

func newClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		Config:     config.ClientConfig{APIBaseURL: srv.URL, RequestTimeout: 2 * time.Second},
		UserID:     "user-1",
		MaxRetries: 1,
	})
}

func TestClient_Upload(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		assert.Equal(t, "user-1", r.Header.Get(UserIDHeader))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "Duplex.IFC", hdr.Filename)
		assert.Equal(t, "ISO-10303-21;", string(b))
		_ = json.NewEncoder(w).Encode(model.UploadResponse{ProjectID: "p1", FileURL: "r2://ifc/p1/Duplex.IFC"})
	}))

	out, err := c.Upload(t.Context(), "Duplex.IFC", strings.NewReader("ISO-10303-21;"))
	require.NoError(t, err)
	assert.Equal(t, "p1", out.ProjectID)
	assert.Equal(t, "r2://ifc/p1/Duplex.IFC", out.FileURL)
}

func TestClient_StartCheck_FailureCarriesJobID(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"job_id":"j1","status":"error","error":"inference service unreachable"}`))
	}))

	_, err := c.StartCheck(t.Context(), model.StartCheckRequest{ProjectID: "p1", FileURL: "r2://ifc/p1/a.ifc"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "j1", httpErr.JobID)
	assert.Equal(t, "inference service unreachable", httpErr.Message)
}

func TestClient_GetJob_NotFound(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"Job not found"}`))
	}))

	_, err := c.GetJob(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Job not found")
}

func TestClient_GetJob_RetriesServerError(t *testing.T) {
	calls := 0
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		assert.Equal(t, "/api/checks/jobs/j1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"j1","project_id":"p1","status":"done","check_results":[],"element_results":[]}`))
	}))

	job, err := c.GetJob(t.Context(), "j1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusDone, job.Status)
	assert.Equal(t, 2, calls)
}

func TestClient_FileURL(t *testing.T) {
	c := New(Options{Config: config.ClientConfig{APIBaseURL: "http://api"}})

	u, ok := c.FileURL("r2://ifc/p1/a.ifc")
	require.True(t, ok)
	assert.Equal(t, "http://api/api/files/ifc/p1/a.ifc", u)

	_, ok = c.FileURL("https://elsewhere/a.ifc")
	assert.False(t, ok)
}

func TestClient_Download(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/files/ifc/p1/a.ifc":
			_, _ = w.Write([]byte("ISO-10303-21;"))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not_found","message":"File not found"}`))
		}
	}))

	url, ok := c.FileURL("r2://ifc/p1/a.ifc")
	require.True(t, ok)
	data, err := c.Download(t.Context(), url, 0)
	require.NoError(t, err)
	assert.Equal(t, "ISO-10303-21;", string(data))

	_, err = c.Download(t.Context(), url, 4)
	require.ErrorContains(t, err, "exceeds 4 bytes")

	missing, _ := c.FileURL("r2://ifc/p1/missing.ifc")
	_, err = c.Download(t.Context(), missing, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
