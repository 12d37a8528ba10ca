package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertAuditRecord = `-- name: InsertAuditRecord :one
INSERT INTO audit_records (
    request_id, fingerprint, decision, outcome, failure_kind, backend, latency_ms
) VALUES (
    $1, $2, $3, $4, $5, $6, $7
)
RETURNING id, request_id, fingerprint, decision, outcome, failure_kind, backend, latency_ms, created_at
`

// InsertAuditRecordParams are the columns for one audit row.
type InsertAuditRecordParams struct {
	RequestID   string
	Fingerprint string
	Decision    string
	Outcome     string
	FailureKind pgtype.Text
	Backend     string
	LatencyMs   int64
}

// InsertAuditRecord appends one audit-trail row.
func (q *Queries) InsertAuditRecord(ctx context.Context, arg InsertAuditRecordParams) (AuditRecord, error) {
	row := q.db.QueryRow(ctx, insertAuditRecord,
		arg.RequestID,
		arg.Fingerprint,
		arg.Decision,
		arg.Outcome,
		arg.FailureKind,
		arg.Backend,
		arg.LatencyMs,
	)
	var i AuditRecord
	err := row.Scan(
		&i.ID,
		&i.RequestID,
		&i.Fingerprint,
		&i.Decision,
		&i.Outcome,
		&i.FailureKind,
		&i.Backend,
		&i.LatencyMs,
		&i.CreatedAt,
	)
	return i, err
}

const insertLineageEvent = `-- name: InsertLineageEvent :one
INSERT INTO lineage_events (
    request_id, fingerprint, backend, attempt, outcome, occurred_at
) VALUES (
    $1, $2, $3, $4, $5, $6
)
RETURNING id, request_id, fingerprint, backend, attempt, outcome, occurred_at
`

// InsertLineageEventParams are the columns for one lineage row.
type InsertLineageEventParams struct {
	RequestID   string
	Fingerprint string
	Backend     string
	Attempt     int32
	Outcome     string
	OccurredAt  pgtype.Timestamptz
}

// InsertLineageEvent appends one dispatch-attempt row.
func (q *Queries) InsertLineageEvent(ctx context.Context, arg InsertLineageEventParams) (LineageEvent, error) {
	row := q.db.QueryRow(ctx, insertLineageEvent,
		arg.RequestID,
		arg.Fingerprint,
		arg.Backend,
		arg.Attempt,
		arg.Outcome,
		arg.OccurredAt,
	)
	var i LineageEvent
	err := row.Scan(
		&i.ID,
		&i.RequestID,
		&i.Fingerprint,
		&i.Backend,
		&i.Attempt,
		&i.Outcome,
		&i.OccurredAt,
	)
	return i, err
}
