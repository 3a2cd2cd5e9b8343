package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/SerjoschDuering/ifcore-platform/config"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/metrics"
)

type stubLister struct {
	jobs  []model.Job
	err   error
	limit atomic.Int32
	calls atomic.Int32
}

func (s *stubLister) ListRunning(_ context.Context, limit int) ([]model.Job, error) {
	s.calls.Add(1)
	s.limit.Store(int32(limit))
	return s.jobs, s.err
}

type stubSyncer struct {
	mu       sync.Mutex
	seen     []string
	sources  map[string]bool
	fail     map[string]bool
	inFlight atomic.Int32
	maxIn    atomic.Int32
}

func (s *stubSyncer) Sync(_ context.Context, job *model.Job, source string) (*model.Job, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxIn.Load()
		if n <= m || s.maxIn.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, job.ID)
	if s.sources == nil {
		s.sources = map[string]bool{}
	}
	s.sources[source] = true
	if s.fail[job.ID] {
		return nil, errors.New("unreachable")
	}
	return job, nil
}

func runningJobs(n int) []model.Job {
	jobs := make([]model.Job, n)
	for i := range jobs {
		jobs[i] = model.Job{ID: string(rune('a' + i)), Status: model.JobStatusRunning}
	}
	return jobs
}

func TestNewJobSyncService_Validation(t *testing.T) {
	_, err := NewJobSyncService(JobSyncServiceOptions{})
	require.Error(t, err)

	_, err = NewJobSyncService(JobSyncServiceOptions{Jobs: &stubLister{}, Syncer: &stubSyncer{}})
	require.ErrorContains(t, err, "interval")
}

func TestJobSyncService_RunOnce(t *testing.T) {
	lister := &stubLister{jobs: runningJobs(10)}
	syncer := &stubSyncer{fail: map[string]bool{"b": true, "e": true}}
	sink := &countingSink{}
	svc, err := NewJobSyncService(JobSyncServiceOptions{
		Jobs:    lister,
		Syncer:  syncer,
		Config:  config.JobSyncConfig{Interval: time.Second, BatchSize: 25, Concurrency: 3},
		Metrics: sink,
	})
	require.NoError(t, err)

	failed, err := svc.RunOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, failed)
	assert.Len(t, syncer.seen, 10)
	assert.True(t, syncer.sources[metrics.SourceRunner])
	assert.EqualValues(t, 25, lister.limit.Load())
	assert.LessOrEqual(t, syncer.maxIn.Load(), int32(3))
	assert.EqualValues(t, 2, sink.count("loop.fetch_errors"))
}

func TestJobSyncService_RunOnce_ListError(t *testing.T) {
	svc, err := NewJobSyncService(JobSyncServiceOptions{
		Jobs:   &stubLister{err: errors.New("db down")},
		Syncer: &stubSyncer{},
		Config: config.JobSyncConfig{Interval: time.Second},
	})
	require.NoError(t, err)

	_, err = svc.RunOnce(t.Context())
	require.Error(t, err)
}

func TestJobSyncService_Run_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	lister := &stubLister{jobs: runningJobs(2)}
	svc, err := NewJobSyncService(JobSyncServiceOptions{
		Jobs:   lister,
		Syncer: &stubSyncer{},
		Config: config.JobSyncConfig{Interval: 5 * time.Millisecond, BatchSize: 10, Concurrency: 2},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return lister.calls.Load() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
