package run

import (
	"context"
	"sync"
	"time"

	"encore.dev/beta/errs"

	"encore.app/analysis/model"
)

// Status resolves a poll handle issued by Submit.
func (b *business) Status(ctx context.Context, id string) (*model.AnalysisStatus, error) {
	if st, ok := b.reg.get(id); ok {
		return st, nil
	}
	return nil, &errs.Error{Code: errs.NotFound, Message: "unknown analysis id"}
}

// Load returns the controller's live load snapshot.
func (b *business) Load(ctx context.Context) model.LoadSnapshot {
	return b.ctrl.Snapshot()
}

// registry is the in-memory poll-handle store. Terminal entries expire after
// the status TTL; in-progress entries never expire.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*model.AnalysisStatus
	ttl     time.Duration
	now     func() time.Time
}

func newRegistry(ttl time.Duration) *registry {
	return &registry{
		entries: make(map[string]*model.AnalysisStatus),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (r *registry) track(req *model.AnalysisRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeLocked()
	r.entries[req.ID] = &model.AnalysisStatus{
		ID:          req.ID,
		State:       model.StateReceived,
		SubmittedAt: req.SubmittedAt,
	}
}

func (r *registry) setState(id string, state model.RequestState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.entries[id]; ok {
		st.State = state
		st.QueuePosition = 0
	}
}

func (r *registry) setQueued(id string, position int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.entries[id]; ok {
		st.State = model.StateQueued
		st.QueuePosition = position
	}
}

func (r *registry) finish(id string, state model.RequestState, art *model.Artifact, kind model.FailureKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.entries[id]
	if !ok {
		return
	}
	now := r.now()
	st.State = state
	st.QueuePosition = 0
	st.Artifact = art
	st.FailureKind = kind
	st.FinishedAt = &now
}

func (r *registry) get(id string) (*model.AnalysisStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	cp := *st
	return &cp, true
}

// purgeLocked drops terminal entries older than the TTL. Called on writes so
// the registry stays bounded without a janitor goroutine.
func (r *registry) purgeLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, st := range r.entries {
		if st.State.Terminal() && st.FinishedAt != nil && st.FinishedAt.Before(cutoff) {
			delete(r.entries, id)
		}
	}
}
