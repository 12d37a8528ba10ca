package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"encore.dev/rlog"

	"encore.app/analysis/model"
	"encore.app/analysis/repository/audit"
	"encore.app/analysis/workflow"
)

// Recorder persists the audit trail for one finished request. Always invoked
// asynchronously; callers are never blocked on audit durability.
type Recorder interface {
	Record(ctx context.Context, record model.AuditRecord, lineage []model.LineageEvent) error
}

// TemporalRecorder starts the audit-trail workflow fire-and-forget so the
// write survives transient relational-store outages.
type TemporalRecorder struct {
	Client client.Client
}

// Record starts one AuditTrail workflow per request id.
func (r *TemporalRecorder) Record(ctx context.Context, record model.AuditRecord, lineage []model.LineageEvent) error {
	workflowID := fmt.Sprintf("audit-%s", record.RequestID)

	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: workflow.TaskQueue,
	}
	params := workflow.AuditTrailParams{Record: record, Lineage: lineage}

	_, err := r.Client.ExecuteWorkflow(ctx, options, workflow.AuditTrail, params)
	if err != nil {
		// Distinguish AlreadyStarted (benign, duplicate terminal path) from real failure
		if temporal.IsWorkflowExecutionAlreadyStartedError(err) {
			rlog.Info("audit workflow already started", "request_id", record.RequestID, "workflow_id", workflowID)
			return nil
		}
		return fmt.Errorf("execute workflow %s: %w", workflowID, err)
	}
	return nil
}

// DirectRecorder writes audit rows straight through the repository. Used
// when no Temporal host is configured.
type DirectRecorder struct {
	Audit audit.Querier
}

// Record appends the audit record and its lineage events.
func (r *DirectRecorder) Record(ctx context.Context, record model.AuditRecord, lineage []model.LineageEvent) error {
	_, err := r.Audit.InsertAuditRecord(ctx, audit.InsertAuditRecordParams{
		RequestID:   record.RequestID,
		Fingerprint: record.Fingerprint,
		Decision:    record.Decision,
		Outcome:     string(record.Outcome),
		FailureKind: pgtype.Text{String: string(record.FailureKind), Valid: record.FailureKind != ""},
		Backend:     string(record.Backend),
		LatencyMs:   record.LatencyMS,
	})
	if err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			// Duplicate terminal path for the same request; the first write won.
			rlog.Info("audit record already persisted", "request_id", record.RequestID)
			return nil
		}
		return fmt.Errorf("insert audit record for %s: %w", record.RequestID, err)
	}

	for _, ev := range lineage {
		_, err := r.Audit.InsertLineageEvent(ctx, audit.InsertLineageEventParams{
			RequestID:   ev.RequestID,
			Fingerprint: ev.Fingerprint,
			Backend:     string(ev.Backend),
			Attempt:     int32(ev.Attempt),
			Outcome:     ev.Outcome,
			OccurredAt:  pgtype.Timestamptz{Time: ev.OccurredAt, Valid: true},
		})
		if err != nil {
			return fmt.Errorf("insert lineage event for %s attempt %d: %w", ev.RequestID, ev.Attempt, err)
		}
	}
	return nil
}
