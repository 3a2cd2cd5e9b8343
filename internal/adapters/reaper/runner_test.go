package reaper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/SerjoschDuering/ifcore-platform/config"
)

type countingFailer struct{ calls atomic.Int32 }

func (f *countingFailer) FailStale(context.Context, time.Duration, int) (int64, error) {
	f.calls.Add(1)
	return 0, nil
}

func TestNewRunnerRequiresRepository(t *testing.T) {
	_, err := NewRunner(RunnerOptions{})
	require.Error(t, err)
}

func TestRunnerRunsUntilCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := &countingFailer{}
	runner, err := NewRunner(RunnerOptions{
		Repo:   repo,
		Config: config.ReaperConfig{Interval: 50 * time.Millisecond, MaxAge: time.Hour, BatchSize: 10},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	assert.Eventually(t, func() bool { return repo.calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}
