package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"encore.app/analysis/model"
)

// TaskQueue is the Temporal task queue for audit-trail workflows.
const TaskQueue = "analysis-audit-trail"

// AuditTrailParams carries everything needed to persist one request's trail.
type AuditTrailParams struct {
	Record  model.AuditRecord    `json:"record"`
	Lineage []model.LineageEvent `json:"lineage,omitempty"`
}

// AuditTrail durably persists the audit record and dispatch lineage for a
// finished request. Started fire-and-forget from the orchestrator; the
// caller is never blocked on audit durability, and the retry policy absorbs
// transient relational-store outages.
func AuditTrail(ctx workflow.Context, params AuditTrailParams) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Persisting audit trail", "requestID", params.Record.RequestID, "outcome", params.Record.Outcome)

	if err := writeAuditRecord(ctx, params.Record); err != nil {
		logger.Error("Failed to persist audit record", "requestID", params.Record.RequestID, "error", err)
		return err
	}

	if len(params.Lineage) > 0 {
		if err := writeLineageEvents(ctx, params.Lineage); err != nil {
			logger.Error("Failed to persist lineage events", "requestID", params.Record.RequestID, "error", err)
			return err
		}
	}

	logger.Info("Audit trail persisted", "requestID", params.Record.RequestID)
	return nil
}

// writeAuditRecord executes the WriteAuditRecord activity
func writeAuditRecord(ctx workflow.Context, record model.AuditRecord) error {
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    15 * time.Second,
			MaximumAttempts:    5,
		},
	}
	activityCtx := workflow.WithActivityOptions(ctx, activityOptions)
	return workflow.ExecuteActivity(activityCtx, WriteAuditRecordActivity, record).Get(ctx, nil)
}

// writeLineageEvents executes the WriteLineageEvents activity
func writeLineageEvents(ctx workflow.Context, events []model.LineageEvent) error {
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    500 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    4,
		},
	}
	activityCtx := workflow.WithActivityOptions(ctx, activityOptions)
	return workflow.ExecuteActivity(activityCtx, WriteLineageEventsActivity, events).Get(ctx, nil)
}
