package backpressure

import (
	"sync"
	"sync/atomic"
	"time"

	"encore.app/analysis/model"
)

// LoadState tracks live load counters and a rolling error window. It is
// explicitly constructed and injected rather than kept as ambient global
// state so every test can start from a fresh instance. Counter reads are
// lock-free; only the outcome window takes a short critical section.
type LoadState struct {
	inFlight          atomic.Int64
	queuedInteractive atomic.Int64
	queuedBatch       atomic.Int64

	// Monotonic totals, never reset for the life of the process.
	totalAdmitted  atomic.Int64
	totalCompleted atomic.Int64
	totalFailed    atomic.Int64
	totalRejected  atomic.Int64

	mu     sync.Mutex
	window []bool // ring buffer of recent completions, true = failure
	next   int
	filled int
}

// NewLoadState creates load state with a rolling window over the last
// windowSize completions.
func NewLoadState(windowSize int) *LoadState {
	if windowSize <= 0 {
		windowSize = 32
	}
	return &LoadState{window: make([]bool, windowSize)}
}

// RecordOutcome appends a completion outcome to the rolling window and
// returns the resulting error rate.
func (l *LoadState) RecordOutcome(failed bool) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.window[l.next] = failed
	l.next = (l.next + 1) % len(l.window)
	if l.filled < len(l.window) {
		l.filled++
	}
	return l.errorRateLocked()
}

// ErrorRate returns the failure fraction across the current window.
func (l *LoadState) ErrorRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorRateLocked()
}

func (l *LoadState) errorRateLocked() float64 {
	if l.filled == 0 {
		return 0
	}
	failures := 0
	for i := 0; i < l.filled; i++ {
		if l.window[i] {
			failures++
		}
	}
	return float64(failures) / float64(l.filled)
}

// Snapshot captures the current counters. Capacity figures are supplied by
// the controller, which owns the admission policy.
func (l *LoadState) Snapshot(capacity, effectiveCapacity int, degraded bool) model.LoadSnapshot {
	return model.LoadSnapshot{
		InFlight:          l.inFlight.Load(),
		QueuedInteractive: l.queuedInteractive.Load(),
		QueuedBatch:       l.queuedBatch.Load(),
		Capacity:          capacity,
		EffectiveCapacity: effectiveCapacity,
		Degraded:          degraded,
		ErrorRate:         l.ErrorRate(),
		TotalAdmitted:     l.totalAdmitted.Load(),
		TotalCompleted:    l.totalCompleted.Load(),
		TotalFailed:       l.totalFailed.Load(),
		TotalRejected:     l.totalRejected.Load(),
		TakenAt:           time.Now(),
	}
}

func (l *LoadState) queuedCounter(p model.Priority) *atomic.Int64 {
	if p == model.PriorityInteractive {
		return &l.queuedInteractive
	}
	return &l.queuedBatch
}
