package run

import (
	"context"
	"time"

	"encore.app/analysis/artifactcache"
	"encore.app/analysis/backpressure"
	"encore.app/analysis/fingerprint"
	"encore.app/analysis/model"
)

// Submit takes a request through the admission decision. Admitted requests
// execute synchronously; queued requests continue in the background and are
// observable through their poll handle; rejections surface as typed failures.
func (b *business) Submit(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisStatus, error) {
	fp := fingerprint.ForWorkUnit(req)
	b.reg.track(req)

	dec := b.ctrl.Admit(req)
	b.mirrorLoad()

	switch dec.Kind {
	case backpressure.DecisionAdmit:
		return b.execute(ctx, req, fp, string(dec.Kind))

	case backpressure.DecisionQueue:
		b.reg.setQueued(req.ID, dec.Position)
		// Generous outer bound: the wait itself plus a full dispatch window.
		budget := b.opts.QueueWaitTimeout + b.opts.DispatchTimeout + 5*time.Second
		runAsync("queued-analysis", budget, func(bgctx context.Context) error {
			return b.awaitAndRun(bgctx, req, fp, dec.Ticket)
		})
		st, _ := b.reg.get(req.ID)
		return st, nil

	default:
		failure := model.NewFailure(dec.Reason, "admission refused: capacity and queue exhausted")
		b.finalize(req, fp, string(dec.Kind), model.StateRejected, nil, failure)
		return nil, failure
	}
}

// execute owns one in-flight slot: it builds the work unit, consults the
// artifact cache (which dispatches on a miss), releases the slot, and
// finalizes the terminal state.
func (b *business) execute(ctx context.Context, req *model.AnalysisRequest, fp, decision string) (*model.AnalysisStatus, error) {
	b.reg.setState(req.ID, model.StateAdmitted)

	wu := model.WorkUnit{
		RequestID:   req.ID,
		Fingerprint: fp,
		Backend:     req.Backend,
		TemplateID:  req.TemplateID,
		Task:        req.Task,
		Params:      req.Params,
		Deadline:    time.Now().Add(b.opts.DispatchTimeout),
	}

	art, origin, err := b.cache.GetOrCompute(ctx, req.ArtifactClass, fp, func(cctx context.Context) (model.Artifact, error) {
		b.reg.setState(req.ID, model.StateDispatching)
		return b.dispatcher.Dispatch(cctx, wu)
	})

	b.ctrl.Complete(err != nil)
	b.mirrorLoad()

	if err != nil {
		failure := model.AsFailure(err)
		b.finalize(req, fp, decision, model.StateFailed, nil, failure)
		return nil, failure
	}

	state := model.StateCompleted
	if origin == artifactcache.OriginHit {
		state = model.StateCacheHit
	}
	b.finalize(req, fp, decision, state, &art, nil)
	st, _ := b.reg.get(req.ID)
	return st, nil
}

// awaitAndRun waits for a queued ticket to be promoted. Past the queue-wait
// timeout the ticket is abandoned and the request is rejected; an abandoned
// ticket is never admitted afterwards. Losing the race against a concurrent
// promotion means the slot is already ours, so the request runs.
func (b *business) awaitAndRun(ctx context.Context, req *model.AnalysisRequest, fp string, ticket *backpressure.Ticket) error {
	timer := time.NewTimer(b.opts.QueueWaitTimeout)
	defer timer.Stop()

	select {
	case <-ticket.Ready():
		_, _ = b.execute(ctx, req, fp, "queue")
		return nil

	case <-timer.C:
		if b.ctrl.Abandon(ticket) {
			b.mirrorLoad()
			failure := model.NewFailure(model.FailureQueueTimeout, "queue wait exceeded "+b.opts.QueueWaitTimeout.String())
			b.finalize(req, fp, "queue", model.StateRejected, nil, failure)
			return nil
		}
		// Promotion won the race; the in-flight slot is already held.
		<-ticket.Ready()
		_, _ = b.execute(ctx, req, fp, "queue")
		return nil

	case <-ctx.Done():
		if b.ctrl.Abandon(ticket) {
			b.mirrorLoad()
			failure := model.NewFailure(model.FailureQueueTimeout, "background wait aborted: "+ctx.Err().Error())
			b.finalize(req, fp, "queue", model.StateRejected, nil, failure)
			return ctx.Err()
		}
		// Promoted but no time left to run: release the slot without
		// polluting the error window.
		<-ticket.Ready()
		b.ctrl.Complete(false)
		b.mirrorLoad()
		failure := model.NewFailure(model.FailureQueueTimeout, "promoted after background wait expired")
		b.finalize(req, fp, "queue", model.StateRejected, nil, failure)
		return ctx.Err()
	}
}

// finalize records the terminal state in the registry and hands the audit
// record plus drained lineage to the recorder off the caller's path.
func (b *business) finalize(req *model.AnalysisRequest, fp, decision string, state model.RequestState, art *model.Artifact, failure *model.Failure) {
	var kind model.FailureKind
	if failure != nil {
		kind = failure.Kind
	}
	b.reg.finish(req.ID, state, art, kind)

	record := model.AuditRecord{
		RequestID:   req.ID,
		Fingerprint: fp,
		Decision:    decision,
		Outcome:     state,
		FailureKind: kind,
		Backend:     req.Backend,
		LatencyMS:   time.Since(req.SubmittedAt).Milliseconds(),
		CreatedAt:   time.Now(),
	}
	lineage := b.lineage.Drain(req.ID)
	runAsync("audit-trail", 10*time.Second, func(ctx context.Context) error {
		return b.recorder.Record(ctx, record, lineage)
	})
}

// mirrorLoad publishes the current load snapshot to the bookkeeping cluster.
func (b *business) mirrorLoad() {
	snap := b.ctrl.Snapshot()
	publish := b.publishLoad
	runAsync("load-snapshot", 2*time.Second, func(ctx context.Context) error {
		return publish(ctx, snap)
	})
}
