// Package core holds the ports between services and adapters, plus the small
// services built directly on them.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// CacheRepository defines the interface for caching operations.
// The core defines the interface and the data layer provides implementations.
type CacheRepository interface {
	// Set stores a value with the given TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns nil, nil when the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// JobCache remembers terminal jobs with their results so repeated reads skip Postgres.
// Only terminal jobs are cached; they never change again.
type JobCache struct {
	cache  CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// JobCacheOptions bundles dependencies for NewJobCache.
type JobCacheOptions struct {
	Cache  CacheRepository
	TTL    time.Duration
	Logger *slog.Logger
}

// NewJobCache builds a JobCache. A nil Cache yields a cache that always misses.
func NewJobCache(opts JobCacheOptions) *JobCache {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &JobCache{cache: opts.Cache, ttl: ttl, logger: logger.With("component", "job_cache")}
}

func jobCacheKey(jobID string) string { return "ifcore:job:" + jobID }

// Get returns the cached job, or nil when absent. Cache failures are logged and treated as misses.
func (c *JobCache) Get(ctx context.Context, jobID string) *model.JobWithResults {
	if c == nil || c.cache == nil || jobID == "" {
		return nil
	}
	raw, err := c.cache.Get(ctx, jobCacheKey(jobID))
	if err != nil {
		c.logger.DebugContext(ctx, "job cache get failed", "job_id", jobID, "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}
	var job model.JobWithResults
	if err := json.Unmarshal(raw, &job); err != nil {
		c.logger.WarnContext(ctx, "job cache entry corrupt", "job_id", jobID, "error", err)
		return nil
	}
	return &job
}

// ErrNotTerminal is returned when caching a job that may still change.
var ErrNotTerminal = errors.New("only terminal jobs are cached")

// Put stores a terminal job.
func (c *JobCache) Put(ctx context.Context, job *model.JobWithResults) error {
	if c == nil || c.cache == nil || job == nil {
		return nil
	}
	if !job.Status.IsTerminal() {
		return ErrNotTerminal
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := c.cache.Set(ctx, jobCacheKey(job.ID), raw, c.ttl); err != nil {
		return fmt.Errorf("cache job %s: %w", job.ID, err)
	}
	return nil
}
