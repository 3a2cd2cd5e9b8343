package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrProjectNotFound is returned when a project is not found.
	ErrProjectNotFound = errors.New("project not found")
	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotPending is returned when MarkRunning finds the job already past pending.
	ErrJobNotPending = errors.New("job is not pending")
	// ErrEmptyCacheKey is returned for cache operations without a key.
	ErrEmptyCacheKey = errors.New("key cannot be empty")
)
