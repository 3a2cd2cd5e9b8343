// Package poller drives non-terminal jobs in the session store to completion
// with a single bounded polling loop.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/metrics"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/statsd"
	"github.com/SerjoschDuering/ifcore-platform/internal/session/store"
)

// DefaultInterval is the delay between ticks.
const DefaultInterval = 2 * time.Second

// DefaultConcurrency caps parallel job fetches within one tick.
const DefaultConcurrency = 8

// JobFetcher reads the current state of a job.
type JobFetcher interface {
	GetJob(ctx context.Context, id string) (*model.JobWithResults, error)
}

// Store is the part of the session store the poller needs.
type Store interface {
	Snapshot() store.Snapshot
	ApplyJobUpdate(model.JobWithResults) store.ApplyResult
}

// Options groups dependencies for the Poller.
type Options struct {
	Store       Store       // Required
	Fetcher     JobFetcher  // Required
	Interval    time.Duration
	Concurrency int
	Logger      *slog.Logger
	Metrics     statsd.Sink
}

// Poller owns at most one polling goroutine. The goroutine exits on its own
// once no tracked job is pending or running, so an idle poller holds no timer.
type Poller struct {
	store       Store
	fetcher     JobFetcher
	interval    time.Duration
	concurrency int
	logger      *slog.Logger
	metrics     statsd.Sink

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	ticks atomic.Int64
}

// New constructs a Poller.
func New(opts Options) (*Poller, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("job fetcher is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		store:       opts.Store,
		fetcher:     opts.Fetcher,
		interval:    opts.Interval,
		concurrency: opts.Concurrency,
		logger:      logger.With("component", "poller"),
		metrics:     opts.Metrics,
	}, nil
}

// Start launches the loop unless it is already running. The first tick runs
// immediately.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.running = true
	p.cancel = cancel
	p.done = done
	go p.loop(ctx, done)
}

// Stop cancels the loop and waits for it to exit. It is a no-op when idle.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a loop goroutine is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Done returns a channel closed when the current loop exits. When the poller
// is idle the channel is already closed.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return p.done
}

// Wait blocks until the current loop exits.
func (p *Poller) Wait() {
	<-p.Done()
}

// Ticks returns how many ticks have run since construction.
func (p *Poller) Ticks() int64 {
	return p.ticks.Load()
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	p.logger.DebugContext(ctx, "poller started")

	for {
		p.tick(ctx)

		if !p.continueOrRelease(ctx, done) {
			return
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.release(done)
			p.logger.DebugContext(ctx, "poller stopped")
			return
		case <-timer.C:
		}
	}
}

// continueOrRelease decides under the lock whether another tick is needed. A
// job tracked after this check sees running=false and its Start launches a
// fresh loop, so no job is ever left unpolled.
func (p *Poller) continueOrRelease(ctx context.Context, done chan struct{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() == nil && len(p.store.Snapshot().PendingJobs()) > 0 {
		return true
	}
	p.releaseLocked(done)
	p.logger.DebugContext(ctx, "poller idle")
	return false
}

func (p *Poller) release(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseLocked(done)
}

func (p *Poller) releaseLocked(done chan struct{}) {
	if p.done != done {
		return
	}
	p.running = false
	p.cancel()
	p.cancel = nil
}

func (p *Poller) tick(ctx context.Context) {
	start := time.Now()
	p.ticks.Add(1)
	pending := p.store.Snapshot().PendingJobs()

	var failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for _, id := range pending {
		g.Go(func() error {
			if !p.pollOne(ctx, id) {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	metrics.EmitTick(p.metrics, metrics.TickMetric{
		Loop:     metrics.SourcePoller,
		Jobs:     len(pending),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	})
}

// pollOne fetches and applies one job. Fetch errors are swallowed so one bad
// job never stops the loop; it reports false when the fetch failed.
func (p *Poller) pollOne(ctx context.Context, id string) bool {
	job, err := p.fetcher.GetJob(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		p.logger.DebugContext(ctx, "job fetch failed", "job_id", id, "error", err)
		return false
	}
	if job == nil {
		return true
	}
	if job.ID == "" {
		job.ID = id
	}

	switch res := p.store.ApplyJobUpdate(*job); res {
	case store.ApplyCompleted, store.ApplyFailed:
		p.logger.InfoContext(ctx, "job finished", "job_id", id, "status", job.Status,
			"checks", len(job.CheckResults), "elements", len(job.ElementResults))
		metrics.EmitJobLifecycle(p.metrics, metrics.JobMetric{
			Source:     metrics.SourcePoller,
			Transition: string(job.Status),
			Result:     metrics.ResultSuccess,
		})
	case store.ApplyUpdated:
		p.logger.DebugContext(ctx, "job updated", "job_id", id, "status", job.Status)
	}
	return true
}
