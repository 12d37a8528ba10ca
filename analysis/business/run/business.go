// Package run is the orchestrator: the per-request state machine that takes
// a validated analysis request through admission, the artifact cache, and
// dispatch, and surfaces a result or a typed failure.
package run

import (
	"context"
	"time"

	"encore.app/analysis/artifactcache"
	"encore.app/analysis/backpressure"
	"encore.app/analysis/dispatch"
	"encore.app/analysis/model"
)

// Business drives analysis requests end to end.
type Business interface {
	// Submit runs the request if admitted, parks it in the queue with a poll
	// handle if capacity is exhausted, or returns a typed rejection.
	Submit(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisStatus, error)

	// Status resolves a poll handle.
	Status(ctx context.Context, id string) (*model.AnalysisStatus, error)

	// Load returns the live load snapshot.
	Load(ctx context.Context) model.LoadSnapshot
}

// Options tune the orchestrator's timing.
type Options struct {
	// QueueWaitTimeout bounds how long a queued request waits for promotion
	// before it is rejected with QueueTimeout.
	QueueWaitTimeout time.Duration
	// DispatchTimeout sets the work unit deadline once a request is admitted.
	DispatchTimeout time.Duration
	// StatusTTL bounds how long terminal poll handles remain resolvable.
	StatusTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueWaitTimeout <= 0 {
		o.QueueWaitTimeout = 30 * time.Second
	}
	if o.DispatchTimeout <= 0 {
		o.DispatchTimeout = 2 * time.Minute
	}
	if o.StatusTTL <= 0 {
		o.StatusTTL = 15 * time.Minute
	}
	return o
}

type business struct {
	ctrl       *backpressure.Controller
	cache      *artifactcache.Cache
	dispatcher dispatch.Dispatcher
	recorder   Recorder
	lineage    *LineageCollector
	reg        *registry
	opts       Options

	// publishLoad mirrors snapshots to the bookkeeping cluster; replaceable
	// in tests where no cache infrastructure exists.
	publishLoad func(ctx context.Context, snap model.LoadSnapshot) error
}

// NewBusiness wires the orchestrator. The lineage collector must be the same
// instance handed to the dispatcher as its sink.
func NewBusiness(
	ctrl *backpressure.Controller,
	cache *artifactcache.Cache,
	dispatcher dispatch.Dispatcher,
	recorder Recorder,
	lineage *LineageCollector,
	opts Options,
) Business {
	return &business{
		ctrl:        ctrl,
		cache:       cache,
		dispatcher:  dispatcher,
		recorder:    recorder,
		lineage:     lineage,
		reg:         newRegistry(opts.withDefaults().StatusTTL),
		opts:        opts.withDefaults(),
		publishLoad: artifactcache.PublishLoadSnapshot,
	}
}
