package model

import (
	"time"
)

// Priority is the scheduling class of a request. Interactive requests are
// promoted out of the wait queue ahead of batch requests.
type Priority string

const (
	PriorityInteractive Priority = "interactive"
	PriorityBatch       Priority = "batch"
)

// Valid reports whether p is a known priority class.
func (p Priority) Valid() bool {
	return p == PriorityInteractive || p == PriorityBatch
}

// RequestState is the orchestrator state machine position of a request.
type RequestState string

const (
	StateReceived    RequestState = "received"
	StateQueued      RequestState = "queued"
	StateAdmitted    RequestState = "admitted"
	StateDispatching RequestState = "dispatching"
	StateCacheHit    RequestState = "cache_hit"
	StateCompleted   RequestState = "completed"
	StateFailed      RequestState = "failed"
	StateRejected    RequestState = "rejected"
)

// Terminal reports whether the state machine can leave s.
func (s RequestState) Terminal() bool {
	switch s {
	case StateCacheHit, StateCompleted, StateFailed, StateRejected:
		return true
	}
	return false
}

// AnalysisRequest is an accepted analysis task. Immutable once created.
type AnalysisRequest struct {
	ID            string            `json:"id"`
	Task          string            `json:"task"`
	Params        map[string]string `json:"params,omitempty"`
	Backend       BackendKind       `json:"backend"`
	TemplateID    string            `json:"template_id,omitempty"`
	ArtifactClass ArtifactClass     `json:"artifact_class"`
	Priority      Priority          `json:"priority"`
	SubmittedAt   time.Time         `json:"submitted_at"`
}

// AnalysisStatus is the poll-handle view of a request's progress.
type AnalysisStatus struct {
	ID            string       `json:"id"`
	State         RequestState `json:"state"`
	QueuePosition int          `json:"queue_position,omitempty"`
	FailureKind   FailureKind  `json:"failure_kind,omitempty"`
	Artifact      *Artifact    `json:"artifact,omitempty"`
	SubmittedAt   time.Time    `json:"submitted_at"`
	FinishedAt    *time.Time   `json:"finished_at,omitempty"`
}
