package model

import (
	"fmt"
	"time"
)

// Artifact is the immutable result of a work unit, keyed by fingerprint.
// Once stored it is never overwritten, only evicted.
type Artifact struct {
	Fingerprint string      `json:"fingerprint"`
	Payload     []byte      `json:"payload"`
	Backend     BackendKind `json:"backend"`
	Size        int64       `json:"size"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Verify checks that a stored artifact is still readable. A failed check is
// treated by the cache as a miss and triggers a recompute.
func (a *Artifact) Verify(fingerprint string) error {
	if a.Fingerprint != fingerprint {
		return fmt.Errorf("artifact fingerprint mismatch: stored %q, requested %q", a.Fingerprint, fingerprint)
	}
	if a.Size != int64(len(a.Payload)) {
		return fmt.Errorf("artifact size mismatch: recorded %d, payload %d", a.Size, len(a.Payload))
	}
	return nil
}
