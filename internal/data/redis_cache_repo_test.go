package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/testutil"
)

func TestRedisCacheRepo_Set_Get_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	repo := NewRedisCacheRepo(RedisCacheRepoOptions{Client: client, Prefix: "test:" + t.Name() + ":"})
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		ttl := 5 * time.Minute
		require.NoError(t, repo.Set(ctx, "key:1", []byte("value"), ttl))

		got, err := repo.Get(ctx, "key:1")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), got)

		actualTTL := client.TTL(ctx, repo.key("key:1")).Val()
		assert.True(t, actualTTL > 0 && actualTTL <= ttl)
	})

	t.Run("get missing key", func(t *testing.T) {
		got, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "key:2", []byte("gone"), time.Minute))

		existed, err := repo.Delete(ctx, "key:2")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = repo.Delete(ctx, "key:2")
		require.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepo_JobCacheRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	repo := NewRedisCacheRepo(RedisCacheRepoOptions{Client: client, Prefix: "test:" + t.Name() + ":"})
	cache := core.NewJobCache(core.JobCacheOptions{Cache: repo, TTL: time.Minute})
	ctx := context.Background()

	job := &model.JobWithResults{
		Job: model.Job{ID: "job-1", ProjectID: "p-1", Status: model.JobStatusDone},
		CheckResults: []model.CheckResult{
			{ID: "c-1", JobID: "job-1", CheckName: "check_door_width", Team: "team-a", Status: model.CheckStatusPass},
		},
		ElementResults: []model.ElementResult{},
	}
	require.NoError(t, cache.Put(ctx, job))

	got := cache.Get(ctx, "job-1")
	require.NotNil(t, got)
	assert.Equal(t, job.Status, got.Status)
	assert.Len(t, got.CheckResults, 1)
}

func TestRedisCacheRepo_Validation(t *testing.T) {
	repo := NewRedisCacheRepo(RedisCacheRepoOptions{})
	ctx := context.Background()

	require.ErrorIs(t, repo.Set(ctx, "", []byte("v"), time.Minute), ErrEmptyCacheKey)

	_, err := repo.Get(ctx, "")
	require.ErrorIs(t, err, ErrEmptyCacheKey)

	_, err = repo.Delete(ctx, "")
	require.ErrorIs(t, err, ErrEmptyCacheKey)
}
