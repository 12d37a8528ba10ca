package workflow

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"encore.app/analysis/model"
	"encore.app/analysis/repository/audit"
)

// ActivityDependencies holds the dependencies needed by activities
type ActivityDependencies struct {
	Audit audit.Querier
}

var activityDeps *ActivityDependencies

// SetActivityDependencies sets the dependencies for activities
func SetActivityDependencies(q audit.Querier) {
	activityDeps = &ActivityDependencies{Audit: q}
}

// WriteAuditRecordActivity appends one audit record to the relational store.
func WriteAuditRecordActivity(ctx context.Context, record model.AuditRecord) error {
	logger := activity.GetLogger(ctx)

	if activityDeps == nil || activityDeps.Audit == nil {
		logger.Error("Activity dependencies not set")
		return temporal.NewApplicationError("activity dependencies not initialized", "DependencyError")
	}

	_, err := activityDeps.Audit.InsertAuditRecord(ctx, audit.InsertAuditRecordParams{
		RequestID:   record.RequestID,
		Fingerprint: record.Fingerprint,
		Decision:    record.Decision,
		Outcome:     string(record.Outcome),
		FailureKind: pgtype.Text{String: string(record.FailureKind), Valid: record.FailureKind != ""},
		Backend:     string(record.Backend),
		LatencyMs:   record.LatencyMS,
	})
	if err != nil {
		logger.Error("Failed to insert audit record", "requestID", record.RequestID, "error", err)
		return err
	}
	return nil
}

// WriteLineageEventsActivity appends the dispatch attempts for a request.
func WriteLineageEventsActivity(ctx context.Context, events []model.LineageEvent) error {
	logger := activity.GetLogger(ctx)

	if activityDeps == nil || activityDeps.Audit == nil {
		logger.Error("Activity dependencies not set")
		return temporal.NewApplicationError("activity dependencies not initialized", "DependencyError")
	}

	for _, ev := range events {
		_, err := activityDeps.Audit.InsertLineageEvent(ctx, audit.InsertLineageEventParams{
			RequestID:   ev.RequestID,
			Fingerprint: ev.Fingerprint,
			Backend:     string(ev.Backend),
			Attempt:     int32(ev.Attempt),
			Outcome:     ev.Outcome,
			OccurredAt:  pgtype.Timestamptz{Time: ev.OccurredAt, Valid: true},
		})
		if err != nil {
			logger.Error("Failed to insert lineage event", "requestID", ev.RequestID, "attempt", ev.Attempt, "error", err)
			return err
		}
	}
	return nil
}
