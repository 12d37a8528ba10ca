package model

import (
	"context"
	"errors"

	"encore.dev/beta/errs"
)

// FailureKind is the stable, typed reason surfaced to callers when a request
// terminates in the failed or rejected state. Raw backend error text is never
// exposed.
type FailureKind string

const (
	FailureCapacityExceeded   FailureKind = "capacity_exceeded"
	FailureQueueTimeout       FailureKind = "queue_timeout"
	FailureTimeout            FailureKind = "timeout"
	FailureBackendUnavailable FailureKind = "backend_unavailable"
	FailureExecutionError     FailureKind = "execution_error"
	FailureCacheCorruption    FailureKind = "cache_corruption"
)

// Failure is the internal error type carried between components. The API
// layer converts it to an errs.Error at the boundary.
type Failure struct {
	Kind FailureKind
	// Detail is for logs and audit only, never returned to callers.
	Detail string
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return string(f.Kind) + ": " + f.Detail
}

// NewFailure builds a Failure with an optional internal detail.
func NewFailure(kind FailureKind, detail string) *Failure {
	return &Failure{Kind: kind, Detail: detail}
}

// AsFailure extracts a Failure from an error chain. Unclassified errors map
// to ExecutionError so callers still receive a stable kind.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: FailureTimeout, Detail: err.Error()}
	}
	return &Failure{Kind: FailureExecutionError, Detail: err.Error()}
}

// FailureDetails carries the failure kind in the error details so API
// consumers can branch on it without parsing messages.
type FailureDetails struct {
	Kind FailureKind `json:"kind"`
}

// ErrDetails marks FailureDetails as encore error details.
func (FailureDetails) ErrDetails() {}

// APIError converts a failure to the public typed error for its kind.
func (f *Failure) APIError() *errs.Error {
	return &errs.Error{
		Code:    f.Kind.Code(),
		Message: string(f.Kind),
		Details: FailureDetails{Kind: f.Kind},
	}
}

// Code maps a failure kind to its stable API error code.
func (k FailureKind) Code() errs.ErrCode {
	switch k {
	case FailureCapacityExceeded:
		return errs.ResourceExhausted
	case FailureQueueTimeout, FailureTimeout:
		return errs.DeadlineExceeded
	case FailureBackendUnavailable:
		return errs.Unavailable
	case FailureExecutionError:
		return errs.FailedPrecondition
	case FailureCacheCorruption:
		return errs.Internal
	}
	return errs.Internal
}
