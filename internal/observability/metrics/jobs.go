// Package metrics holds the standard metric shapes emitted by the job lifecycle.
package metrics

import (
	"time"

	obserrors "github.com/SerjoschDuering/ifcore-platform/internal/observability/errors"
	"github.com/SerjoschDuering/ifcore-platform/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Sources of a job transition.
const (
	SourceSubmit  = "submit"
	SourceLazy    = "lazy_sync"
	SourceRunner  = "job_sync"
	SourceReaper  = "reaper"
	SourcePoller  = "poller"
	SourceProject = "upload"
)

// JobMetric captures details about a job lifecycle event for metric emission.
type JobMetric struct {
	Source     string
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitJobLifecycle emits standardised job lifecycle metrics.
func EmitJobLifecycle(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"source":     in.Source,
		"transition": in.Transition,
		"result":     in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("job.transition", 1, tags)
	if in.Duration > 0 {
		sink.Timing("job.duration", in.Duration, CloneTags(tags))
	}
}

// TickMetric summarises one pass of a ticker-driven loop.
type TickMetric struct {
	Loop     string
	Jobs     int
	Failed   int
	Duration time.Duration
}

// EmitTick records a poller or runner tick.
func EmitTick(sink statsd.Sink, in TickMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"loop": in.Loop}
	sink.Gauge("loop.jobs", float64(in.Jobs), tags)
	if in.Failed > 0 {
		sink.Count("loop.fetch_errors", int64(in.Failed), CloneTags(tags))
	}
	sink.Timing("loop.tick", in.Duration, CloneTags(tags))
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
