package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/SerjoschDuering/ifcore-platform/internal/adapters/objectstore"
	"github.com/SerjoschDuering/ifcore-platform/internal/data"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
	"github.com/SerjoschDuering/ifcore-platform/internal/mocks"
)

type projectFixture struct {
	svc      *ProjectService
	projects *mocks.MockProjectRepository
	jobs     *mocks.MockJobRepository
	objects  *objectstore.MemoryStore
}

func newProjectFixture(t *testing.T) projectFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := projectFixture{
		projects: mocks.NewMockProjectRepository(ctrl),
		jobs:     mocks.NewMockJobRepository(ctrl),
		objects:  objectstore.NewMemoryStore(),
	}
	svc, err := NewProjectService(ProjectServiceOptions{
		Projects: f.projects,
		Jobs:     f.jobs,
		Objects:  f.objects,
		MaxBytes: 1 << 10,
	})
	require.NoError(t, err)
	svc.newID = func() string { return "p-1" }
	f.svc = svc
	return f
}

func TestNewProjectService_Validation(t *testing.T) {
	_, err := NewProjectService(ProjectServiceOptions{})
	require.Error(t, err)
}

func TestProjectService_Upload(t *testing.T) {
	f := newProjectFixture(t)
	owner := "u-1"
	body := "ISO-10303-21;"

	f.projects.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateProjectRequest) (*model.Project, error) {
			assert.Equal(t, "p-1", req.ID)
			assert.Equal(t, "Tower A", req.Name)
			assert.Equal(t, "r2://ifc/p-1/Tower A.IFC", req.FileURL)
			assert.Equal(t, &owner, req.OwnerID)
			return &model.Project{ID: req.ID, Name: req.Name, FileURL: req.FileURL, OwnerID: req.OwnerID}, nil
		})

	resp, err := f.svc.Upload(t.Context(), UploadRequest{
		OwnerID:  &owner,
		Filename: "Tower A.IFC",
		Size:     int64(len(body)),
		Body:     strings.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, &model.UploadResponse{ProjectID: "p-1", FileURL: "r2://ifc/p-1/Tower A.IFC"}, resp)

	obj, err := f.objects.Get(t.Context(), "ifc/p-1/Tower A.IFC")
	require.NoError(t, err)
	defer obj.Body.Close()
	raw, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))
	assert.Equal(t, "application/octet-stream", obj.ContentType)
}

func TestProjectService_Upload_RejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name string
		req  UploadRequest
	}{
		{"no body", UploadRequest{Filename: "a.ifc", Size: 3}},
		{"wrong extension", UploadRequest{Filename: "a.pdf", Size: 3, Body: strings.NewReader("abc")}},
		{"empty", UploadRequest{Filename: "a.ifc", Size: 0, Body: strings.NewReader("")}},
		{"too large", UploadRequest{Filename: "a.ifc", Size: 4 << 10, Body: strings.NewReader("abc")}},
		{"path in name", UploadRequest{Filename: "../a.ifc", Size: 3, Body: strings.NewReader("abc")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProjectFixture(t)
			_, err := f.svc.Upload(t.Context(), tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Zero(t, f.objects.Len())
		})
	}
}

func TestProjectService_Upload_RemovesObjectWhenInsertFails(t *testing.T) {
	f := newProjectFixture(t)
	f.projects.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := f.svc.Upload(t.Context(), UploadRequest{Filename: "a.ifc", Size: 3, Body: strings.NewReader("abc")})
	require.ErrorContains(t, err, "create project")
	assert.Zero(t, f.objects.Len())
}

func TestProjectService_List(t *testing.T) {
	f := newProjectFixture(t)
	f.projects.EXPECT().List(gomock.Any(), (*string)(nil)).Return(nil, nil)

	got, err := f.svc.List(t.Context(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProjectService_Get(t *testing.T) {
	f := newProjectFixture(t)
	f.projects.EXPECT().GetByID(gomock.Any(), "p-1").Return(&model.Project{ID: "p-1", Name: "Tower"}, nil)
	f.jobs.EXPECT().ListByProject(gomock.Any(), "p-1").Return([]model.Job{{ID: "j-2"}, {ID: "j-1"}}, nil)

	got, err := f.svc.Get(t.Context(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Tower", got.Name)
	require.Len(t, got.Jobs, 2)
	assert.Equal(t, "j-2", got.Jobs[0].ID)
}

func TestProjectService_Get_NotFound(t *testing.T) {
	f := newProjectFixture(t)
	f.projects.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, data.ErrProjectNotFound)

	_, err := f.svc.Get(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.ErrorIs(t, err, data.ErrProjectNotFound)
}
