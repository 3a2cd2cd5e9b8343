package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SerjoschDuering/ifcore-platform/internal/testutil"
)

func TestProjectRepo_CreateAndGet(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewProjectRepo(db, tp)

		req := testutil.NewProjectRequest().WithOwner("user-1").WithName("Duplex A").Build()
		created, err := repo.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, req.ID, created.ID)
		assert.Equal(t, "Duplex A", created.Name)
		require.NotNil(t, created.OwnerID)
		assert.Equal(t, "user-1", *created.OwnerID)
		assert.True(t, created.CreatedAt.Equal(testutil.TestTime()))

		got, err := repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, created.FileURL, got.FileURL)

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestProjectRepo_Create_Validation(t *testing.T) {
	repo := NewProjectRepo(nil, nil)
	req := testutil.NewProjectRequest().Build()
	req.FileURL = "https://example.com/model.ifc"

	_, err := repo.Create(context.Background(), req)
	require.Error(t, err)
}

func TestProjectRepo_List_OwnAndShared(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewProjectRepo(db, tp)

		shared, err := repo.Create(ctx, testutil.NewProjectRequest().WithName("shared").Build())
		require.NoError(t, err)
		tp.AddTime(time.Minute)
		mine, err := repo.Create(ctx, testutil.NewProjectRequest().WithOwner("u1").WithName("mine").Build())
		require.NoError(t, err)
		tp.AddTime(time.Minute)
		_, err = repo.Create(ctx, testutil.NewProjectRequest().WithOwner("u2").WithName("theirs").Build())
		require.NoError(t, err)

		owner := "u1"
		list, err := repo.List(ctx, &owner)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, mine.ID, list[0].ID, "newest first")
		assert.Equal(t, shared.ID, list[1].ID)

		anon, err := repo.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, anon, 1)
		assert.Equal(t, shared.ID, anon[0].ID)
	})
}
