package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP API server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeJobSync runs the background job sync runner.
	ServiceModeJobSync ServiceMode = "job-sync"
	// ServiceModeReaper runs the stuck job reaper.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeJobSync,
		ServiceModeReaper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeJobSync, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, job-sync, reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// JobSyncConfig contains background job sync configuration.
type JobSyncConfig struct {
	// Interval is the sync tick interval.
	Interval time.Duration `env:"JOB_SYNC_INTERVAL" envDefault:"5s"`

	// BatchSize is the maximum number of running jobs synced per tick.
	BatchSize int `env:"JOB_SYNC_BATCH_SIZE" envDefault:"50"`

	// Concurrency caps parallel inference reads within a tick.
	Concurrency int `env:"JOB_SYNC_CONCURRENCY" envDefault:"4"`
}

// Sanitize applies guardrails to job sync configuration values.
func (j *JobSyncConfig) Sanitize() {
	if j.Interval < time.Second {
		j.Interval = time.Second
	}
	if j.BatchSize < 1 {
		j.BatchSize = 1
	}
	if j.BatchSize > 1000 {
		j.BatchSize = 1000
	}
	if j.Concurrency < 1 {
		j.Concurrency = 1
	}
}

// ReaperConfig contains job reaper service configuration.
type ReaperConfig struct {
	// Interval is the reaper tick interval.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"5m"`

	// MaxAge is how long a job may stay pending or running before it is failed.
	MaxAge time.Duration `env:"REAPER_MAX_AGE" envDefault:"30m"`

	// BatchSize is the maximum number of rows to process per operation.
	// Batching prevents long locks and I/O spikes on large tables.
	BatchSize int `env:"REAPER_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	// Enforce minimum intervals to prevent excessive database load
	if r.Interval < 1*time.Minute {
		r.Interval = 1 * time.Minute
	}
	if r.MaxAge < 5*time.Minute {
		r.MaxAge = 5 * time.Minute
	}
	if r.BatchSize < 1 {
		r.BatchSize = 1
	}
	if r.BatchSize > 10000 {
		r.BatchSize = 10000
	}
}
