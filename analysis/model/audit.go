package model

import (
	"time"
)

// AuditRecord is the durable, append-only trail entry for a finished request.
// Written asynchronously; never read on the hot path and never mutated.
type AuditRecord struct {
	RequestID   string       `json:"request_id"`
	Fingerprint string       `json:"fingerprint"`
	Decision    string       `json:"decision"`
	Outcome     RequestState `json:"outcome"`
	FailureKind FailureKind  `json:"failure_kind,omitempty"`
	Backend     BackendKind  `json:"backend"`
	LatencyMS   int64        `json:"latency_ms"`
	CreatedAt   time.Time    `json:"created_at"`
}

// LineageEvent records a single dispatch attempt for a work unit.
type LineageEvent struct {
	RequestID   string      `json:"request_id"`
	Fingerprint string      `json:"fingerprint"`
	Backend     BackendKind `json:"backend"`
	Attempt     int         `json:"attempt"`
	Outcome     string      `json:"outcome"`
	OccurredAt  time.Time   `json:"occurred_at"`
}
