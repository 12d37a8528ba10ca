package model

import (
	"time"
)

// LoadSnapshot is a point-in-time view of the controller's load state,
// exposed on the load endpoint and mirrored to the bookkeeping cache cluster.
type LoadSnapshot struct {
	InFlight          int64     `json:"in_flight"`
	QueuedInteractive int64     `json:"queued_interactive"`
	QueuedBatch       int64     `json:"queued_batch"`
	Capacity          int       `json:"capacity"`
	EffectiveCapacity int       `json:"effective_capacity"`
	Degraded          bool      `json:"degraded"`
	ErrorRate         float64   `json:"error_rate"`
	TotalAdmitted     int64     `json:"total_admitted"`
	TotalCompleted    int64     `json:"total_completed"`
	TotalFailed       int64     `json:"total_failed"`
	TotalRejected     int64     `json:"total_rejected"`
	TakenAt           time.Time `json:"taken_at"`
}
