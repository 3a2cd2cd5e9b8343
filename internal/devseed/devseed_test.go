package devseed

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/SerjoschDuering/ifcore-platform/internal/adapters/objectstore"
	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/mocks"
)

func TestDemoResults(t *testing.T) {
	checks, elements := DemoResults("job-1", "proj-1")
	require.Len(t, checks, len(demoChecks))

	byName := map[string]model.CheckResult{}
	ids := map[string]struct{}{}
	for _, c := range checks {
		byName[c.CheckName] = c
		ids[c.ID] = struct{}{}
		assert.Equal(t, "job-1", c.JobID)
		assert.Equal(t, "proj-1", c.ProjectID)
		assert.True(t, c.HasElements)
	}

	assert.Equal(t, model.CheckStatusFail, byName["check_door_width"].Status)
	assert.Equal(t, model.CheckStatusPass, byName["check_room_area"].Status)
	assert.Equal(t, model.CheckStatusUnknown, byName["check_wall_u_value"].Status)
	assert.Equal(t, "3 elements: 1 pass, 1 warning, 1 blocked", byName["check_wall_u_value"].Summary)

	for _, e := range elements {
		_, ok := ids[e.CheckResultID]
		assert.True(t, ok, "element %s points at an unknown check", e.ID)
		require.NotNil(t, e.ElementID)
		assert.Contains(t, string(demoModel), *e.ElementID)
	}
	assert.Nil(t, elements[len(elements)-2].ActualValue, "blocked element has no measured value")
}

func TestRunSeedsDemoProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	projects := mocks.NewMockProjectRepository(ctrl)
	jobs := mocks.NewMockJobRepository(ctrl)
	objects := objectstore.NewMemoryStore()
	ctx := context.Background()

	projects.EXPECT().List(ctx, nil).Return([]model.Project{{ID: "other", Name: "Other"}}, nil)
	projects.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.CreateProjectRequest) (*model.Project, error) {
			assert.Nil(t, req.OwnerID)
			assert.Equal(t, DemoProjectName, req.Name)
			assert.Equal(t, model.Locator(model.ObjectKey(req.ID, demoFilename)), req.FileURL)
			return &model.Project{ID: req.ID, Name: req.Name, FileURL: req.FileURL}, nil
		})
	jobs.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, projectID string) (*model.Job, error) {
		return &model.Job{ID: "job-1", ProjectID: projectID, Status: model.JobStatusPending}, nil
	})
	jobs.EXPECT().Complete(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, p core.CompleteJobParams) (bool, error) {
		assert.Equal(t, "job-1", p.JobID)
		assert.Len(t, p.CheckResults, len(demoChecks))
		assert.NotEmpty(t, p.ElementResults)
		return true, nil
	})

	res, err := Run(ctx, Services{Projects: projects, Jobs: jobs, Objects: objects}, nil)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, "job-1", res.JobID)

	obj, err := objects.Get(ctx, model.ObjectKey(res.ProjectID, demoFilename))
	require.NoError(t, err)
	defer obj.Body.Close()
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, demoModel, body)
}

func TestRunSkipsExistingDemo(t *testing.T) {
	ctrl := gomock.NewController(t)
	projects := mocks.NewMockProjectRepository(ctrl)
	jobs := mocks.NewMockJobRepository(ctrl)

	projects.EXPECT().List(gomock.Any(), nil).Return([]model.Project{{ID: "demo", Name: DemoProjectName}}, nil)

	res, err := Run(context.Background(), Services{Projects: projects, Jobs: jobs}, nil)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "demo", res.ProjectID)
}

func TestRunPropagatesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	projects := mocks.NewMockProjectRepository(ctrl)
	jobs := mocks.NewMockJobRepository(ctrl)
	boom := errors.New("boom")

	projects.EXPECT().List(gomock.Any(), nil).Return(nil, nil)
	projects.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := Run(context.Background(), Services{Projects: projects, Jobs: jobs}, nil)
	require.ErrorIs(t, err, boom)

	_, err = Run(context.Background(), Services{}, nil)
	require.Error(t, err)
}
