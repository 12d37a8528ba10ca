package model

import (
	"time"
)

// BackendKind selects the execution backend for a work unit.
type BackendKind string

const (
	BackendSandbox BackendKind = "sandbox"
	BackendGraph   BackendKind = "graph"
)

// Valid reports whether b is a known backend selector.
func (b BackendKind) Valid() bool {
	return b == BackendSandbox || b == BackendGraph
}

// ArtifactClass picks the cache namespace an artifact is stored under.
// Vector-index entries live on the dedicated bookkeeping cluster so general
// cache churn cannot evict them.
type ArtifactClass string

const (
	ArtifactClassGeneral ArtifactClass = "general"
	ArtifactClassVector  ArtifactClass = "vector"
)

// WorkUnit is the dispatchable form of a request. It is created by the
// orchestrator after admission and owned by the dispatcher until completion
// or deadline expiry.
type WorkUnit struct {
	RequestID   string            `json:"request_id"`
	Fingerprint string            `json:"fingerprint"`
	Backend     BackendKind       `json:"backend"`
	TemplateID  string            `json:"template_id,omitempty"`
	Task        string            `json:"task"`
	Params      map[string]string `json:"params,omitempty"`
	Deadline    time.Time         `json:"deadline"`
}
