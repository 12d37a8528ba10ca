// Package dispatch submits admitted work units to the sandbox or graph-query
// backend, enforcing the work unit deadline and the per-backend retry policy.
package dispatch

import (
	"context"
	"errors"
	"time"

	"encore.dev/rlog"

	"encore.app/analysis/model"
)

// Backend executes a work unit against one external system.
type Backend interface {
	Run(ctx context.Context, wu model.WorkUnit) ([]byte, error)
}

// LineageSink receives one event per dispatch attempt. Implementations must
// not block; persistence happens off the hot path.
type LineageSink interface {
	RecordLineage(event model.LineageEvent)
}

// Config bounds retry behavior for idempotent graph queries.
type Config struct {
	MaxAttempts int
	BaseBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	return c
}

// Dispatcher routes work units to their target backend.
type Dispatcher interface {
	Dispatch(ctx context.Context, wu model.WorkUnit) (model.Artifact, error)
}

type dispatcher struct {
	sandbox Backend
	graph   Backend
	lineage LineageSink
	cfg     Config

	// sleep is replaceable in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a dispatcher over the two execution backends.
func New(sandbox, graph Backend, lineage LineageSink, cfg Config) Dispatcher {
	return &dispatcher{
		sandbox: sandbox,
		graph:   graph,
		lineage: lineage,
		cfg:     cfg.withDefaults(),
		sleep:   sleepCtx,
	}
}

// Dispatch runs a work unit within its deadline. Sandbox executions are
// never retried; their side effects may not be idempotent. Read-only graph
// queries are retried with exponential backoff on transient failures, up to
// the configured bound.
func (d *dispatcher) Dispatch(ctx context.Context, wu model.WorkUnit) (model.Artifact, error) {
	if !wu.Deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, wu.Deadline)
		defer cancel()
	}

	var payload []byte
	var err error
	switch wu.Backend {
	case model.BackendSandbox:
		payload, err = d.runOnce(ctx, d.sandbox, wu)
	case model.BackendGraph:
		payload, err = d.runWithRetry(ctx, d.graph, wu)
	default:
		return model.Artifact{}, model.NewFailure(model.FailureExecutionError, "unknown backend selector: "+string(wu.Backend))
	}
	if err != nil {
		return model.Artifact{}, err
	}

	return model.Artifact{
		Fingerprint: wu.Fingerprint,
		Payload:     payload,
		Backend:     wu.Backend,
		Size:        int64(len(payload)),
		CreatedAt:   time.Now(),
	}, nil
}

func (d *dispatcher) runOnce(ctx context.Context, backend Backend, wu model.WorkUnit) ([]byte, error) {
	payload, err := backend.Run(ctx, wu)
	d.emit(wu, 1, err)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return payload, nil
}

func (d *dispatcher) runWithRetry(ctx context.Context, backend Backend, wu model.WorkUnit) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		payload, err := backend.Run(ctx, wu)
		d.emit(wu, attempt, err)
		if err == nil {
			return payload, nil
		}

		failure := classify(ctx, err)
		lastErr = failure
		if model.AsFailure(failure).Kind != model.FailureBackendUnavailable {
			return nil, failure
		}
		if attempt == d.cfg.MaxAttempts {
			break
		}

		backoff := d.cfg.BaseBackoff << (attempt - 1)
		rlog.Info("transient graph backend failure, retrying",
			"request_id", wu.RequestID, "attempt", attempt, "backoff", backoff)
		if serr := d.sleep(ctx, backoff); serr != nil {
			return nil, classify(ctx, serr)
		}
	}
	return nil, lastErr
}

func (d *dispatcher) emit(wu model.WorkUnit, attempt int, err error) {
	if d.lineage == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(model.AsFailure(err).Kind)
	}
	d.lineage.RecordLineage(model.LineageEvent{
		RequestID:   wu.RequestID,
		Fingerprint: wu.Fingerprint,
		Backend:     wu.Backend,
		Attempt:     attempt,
		Outcome:     outcome,
		OccurredAt:  time.Now(),
	})
}

// classify folds context expiry into the stable failure taxonomy. Deadline
// expiry always surfaces as Timeout regardless of what the backend reported.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.NewFailure(model.FailureTimeout, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var f *model.Failure
	if errors.As(err, &f) {
		return f
	}
	return model.NewFailure(model.FailureExecutionError, err.Error())
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
