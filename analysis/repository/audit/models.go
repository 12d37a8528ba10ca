package audit

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// AuditRecord is the persisted audit-trail row. Append-only; rows are never
// updated or deleted by the service.
type AuditRecord struct {
	ID          int64
	RequestID   string
	Fingerprint string
	Decision    string
	Outcome     string
	FailureKind pgtype.Text
	Backend     string
	LatencyMs   int64
	CreatedAt   pgtype.Timestamptz
}

// LineageEvent is one persisted dispatch attempt.
type LineageEvent struct {
	ID          int64
	RequestID   string
	Fingerprint string
	Backend     string
	Attempt     int32
	Outcome     string
	OccurredAt  pgtype.Timestamptz
}
