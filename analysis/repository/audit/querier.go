package audit

import (
	"context"
)

// Querier is the audit repository surface. Mocked in tests with mockgen.
type Querier interface {
	InsertAuditRecord(ctx context.Context, arg InsertAuditRecordParams) (AuditRecord, error)
	InsertLineageEvent(ctx context.Context, arg InsertLineageEventParams) (LineageEvent, error)
}

var _ Querier = (*Queries)(nil)
