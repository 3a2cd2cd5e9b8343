package submit

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
	"github.com/SerjoschDuering/ifcore-platform/internal/mocks"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/store"
	"github.com/SerjoschDuering/ifcore-platform/internal/testutil"
)

type countingStarter struct{ n atomic.Int32 }

func (c *countingStarter) Start() { c.n.Add(1) }

var fixedNow = testutil.TestTime()

func newService(t *testing.T) (*Service, *mocks.MockSubmitAPI, *store.Store, *countingStarter) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockSubmitAPI(ctrl)
	st := store.New()
	starter := &countingStarter{}
	svc, err := New(Options{
		API:      api,
		Store:    st,
		Poller:   starter,
		MaxBytes: 1024,
		Now:      testutil.FixedTimeFunc(fixedNow),
	})
	require.NoError(t, err)
	return svc, api, st, starter
}

func modelFile(name, body string) File {
	return File{Name: name, Size: int64(len(body)), Reader: strings.NewReader(body)}
}

func TestSubmit_HappyPath(t *testing.T) {
	svc, api, st, starter := newService(t)
	ctx := context.Background()

	gomock.InOrder(
		api.EXPECT().Upload(ctx, "Duplex.IFC", gomock.Any()).
			Return(&model.UploadResponse{ProjectID: "p1", FileURL: "r2://ifc/p1/Duplex.IFC"}, nil),
		api.EXPECT().StartCheck(ctx, model.StartCheckRequest{ProjectID: "p1", FileURL: "r2://ifc/p1/Duplex.IFC"}).
			Return(&model.StartCheckResponse{JobID: "j1", Status: model.JobStatusRunning}, nil),
		api.EXPECT().ListProjects(ctx).Return([]model.Project{{ID: "p1", Name: "Duplex"}}, nil),
	)

	job, err := svc.Submit(ctx, modelFile("Duplex.IFC", "ISO-10303-21;"))
	require.NoError(t, err)
	assert.Equal(t, "j1", job.ID)
	assert.Equal(t, "p1", job.ProjectID)
	assert.Equal(t, fixedNow, *job.StartedAt)

	snap := st.Snapshot()
	assert.Equal(t, "j1", snap.ActiveJobID)
	assert.Equal(t, model.JobStatusRunning, snap.Jobs["j1"].Status)
	assert.Equal(t, []string{"j1"}, snap.PendingJobs())
	require.Len(t, snap.Projects, 1)
	assert.EqualValues(t, 1, starter.n.Load())
}

func TestSubmit_ValidationHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"wrong extension", modelFile("plan.pdf", "data")},
		{"empty file", File{Name: "a.ifc", Size: 0, Reader: strings.NewReader("")}},
		{"too large", File{Name: "a.ifc", Size: 2048, Reader: strings.NewReader("x")}},
		{"no name", modelFile("", "data")},
		{"no reader", File{Name: "a.ifc", Size: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The mock has no expectations, so any API call fails the test.
			svc, _, st, starter := newService(t)
			_, err := svc.Submit(context.Background(), tt.file)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Zero(t, st.Version())
			assert.Zero(t, starter.n.Load())
		})
	}
}

func TestSubmit_StartCheckFailureTracksNothing(t *testing.T) {
	svc, api, st, starter := newService(t)
	api.EXPECT().Upload(gomock.Any(), "a.ifc", gomock.Any()).
		Return(&model.UploadResponse{ProjectID: "p1", FileURL: "r2://ifc/p1/a.ifc"}, nil)
	api.EXPECT().StartCheck(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.Upstream("inference service unreachable"))

	_, err := svc.Submit(context.Background(), modelFile("a.ifc", "data"))
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	assert.Empty(t, st.Snapshot().Jobs)
	assert.Zero(t, starter.n.Load())
}

func TestSubmit_ErrorStatusTracksNothing(t *testing.T) {
	svc, api, st, _ := newService(t)
	api.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&model.UploadResponse{ProjectID: "p1", FileURL: "r2://ifc/p1/a.ifc"}, nil)
	api.EXPECT().StartCheck(gomock.Any(), gomock.Any()).
		Return(&model.StartCheckResponse{JobID: "j1", Status: model.JobStatusError, Error: "Failed to read file from storage"}, nil)

	_, err := svc.Submit(context.Background(), modelFile("a.ifc", "data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read file from storage")
	assert.Empty(t, st.Snapshot().Jobs)
}

func TestSubmit_UploadFailure(t *testing.T) {
	svc, api, _, starter := newService(t)
	api.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := svc.Submit(context.Background(), modelFile("a.ifc", "data"))
	require.ErrorContains(t, err, "upload a.ifc")
	assert.Zero(t, starter.n.Load())
}

func TestSubmit_ProjectRefreshIsBestEffort(t *testing.T) {
	svc, api, st, _ := newService(t)
	api.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&model.UploadResponse{ProjectID: "p1", FileURL: "r2://ifc/p1/a.ifc"}, nil)
	api.EXPECT().StartCheck(gomock.Any(), gomock.Any()).
		Return(&model.StartCheckResponse{JobID: "j1", Status: model.JobStatusPending}, nil)
	api.EXPECT().ListProjects(gomock.Any()).Return(nil, errors.New("timeout"))

	job, err := svc.Submit(context.Background(), modelFile("a.ifc", "data"))
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, st.Snapshot().Jobs[job.ID].Status)
}

func TestSubmit_ConcurrentSubmissionsAreIndependent(t *testing.T) {
	svc, api, st, starter := newService(t)
	var mu sync.Mutex
	next := 0
	api.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).Times(4).
		DoAndReturn(func(_ context.Context, name string, _ io.Reader) (*model.UploadResponse, error) {
			return &model.UploadResponse{ProjectID: "p-" + name, FileURL: "r2://ifc/p/" + name}, nil
		})
	api.EXPECT().StartCheck(gomock.Any(), gomock.Any()).Times(4).
		DoAndReturn(func(_ context.Context, req model.StartCheckRequest) (*model.StartCheckResponse, error) {
			mu.Lock()
			defer mu.Unlock()
			next++
			return &model.StartCheckResponse{JobID: req.ProjectID + "-job", Status: model.JobStatusRunning}, nil
		})
	api.EXPECT().ListProjects(gomock.Any()).Times(4).Return(nil, nil)

	var wg sync.WaitGroup
	for _, name := range []string{"a.ifc", "b.ifc", "c.ifc", "d.ifc"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), modelFile(name, "data"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, st.Snapshot().Jobs, 4)
	assert.EqualValues(t, 4, starter.n.Load())
	assert.Equal(t, 4, next)
}
