package run

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"encore.app/analysis/mocks/repository/audit_repo"
	"encore.app/analysis/model"
	"encore.app/analysis/repository/audit"
)

func TestDirectRecorderWritesRecordAndLineage(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	querier := audit_repo.NewMockQuerier(mockCtrl)
	recorder := &DirectRecorder{Audit: querier}

	record := model.AuditRecord{
		RequestID:   "req-1",
		Fingerprint: "abc123",
		Decision:    "admit",
		Outcome:     model.StateCompleted,
		Backend:     model.BackendGraph,
		LatencyMS:   420,
		CreatedAt:   time.Now(),
	}
	lineage := []model.LineageEvent{
		{RequestID: "req-1", Fingerprint: "abc123", Backend: model.BackendGraph, Attempt: 1, Outcome: string(model.FailureBackendUnavailable), OccurredAt: time.Now()},
		{RequestID: "req-1", Fingerprint: "abc123", Backend: model.BackendGraph, Attempt: 2, Outcome: "ok", OccurredAt: time.Now()},
	}

	querier.EXPECT().InsertAuditRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg audit.InsertAuditRecordParams) (audit.AuditRecord, error) {
			assert.Equal(t, "req-1", arg.RequestID)
			assert.Equal(t, "admit", arg.Decision)
			assert.Equal(t, string(model.StateCompleted), arg.Outcome)
			assert.False(t, arg.FailureKind.Valid)
			assert.Equal(t, int64(420), arg.LatencyMs)
			return audit.AuditRecord{}, nil
		}).Times(1)
	gomock.InOrder(
		querier.EXPECT().InsertLineageEvent(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg audit.InsertLineageEventParams) (audit.LineageEvent, error) {
				assert.Equal(t, int32(1), arg.Attempt)
				return audit.LineageEvent{}, nil
			}),
		querier.EXPECT().InsertLineageEvent(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg audit.InsertLineageEventParams) (audit.LineageEvent, error) {
				assert.Equal(t, int32(2), arg.Attempt)
				return audit.LineageEvent{}, nil
			}),
	)

	require.NoError(t, recorder.Record(context.Background(), record, lineage))
}

func TestDirectRecorderMarksFailureKind(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	querier := audit_repo.NewMockQuerier(mockCtrl)
	recorder := &DirectRecorder{Audit: querier}

	record := model.AuditRecord{
		RequestID:   "req-2",
		Fingerprint: "def456",
		Decision:    "queue",
		Outcome:     model.StateRejected,
		FailureKind: model.FailureQueueTimeout,
		Backend:     model.BackendSandbox,
	}

	querier.EXPECT().InsertAuditRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg audit.InsertAuditRecordParams) (audit.AuditRecord, error) {
			assert.True(t, arg.FailureKind.Valid)
			assert.Equal(t, string(model.FailureQueueTimeout), arg.FailureKind.String)
			return audit.AuditRecord{}, nil
		}).Times(1)

	require.NoError(t, recorder.Record(context.Background(), record, nil))
}

func TestDirectRecorderDuplicateIsBenign(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	querier := audit_repo.NewMockQuerier(mockCtrl)
	recorder := &DirectRecorder{Audit: querier}

	querier.EXPECT().InsertAuditRecord(gomock.Any(), gomock.Any()).
		Return(audit.AuditRecord{}, &pgconn.PgError{Code: pgerrcode.UniqueViolation}).
		Times(1)
	// No lineage expectations: the first write carried them, so the call
	// short-circuits.

	err := recorder.Record(context.Background(), model.AuditRecord{RequestID: "req-dup"}, []model.LineageEvent{{RequestID: "req-dup", Attempt: 1}})
	assert.NoError(t, err)
}

func TestDirectRecorderPropagatesErrors(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	querier := audit_repo.NewMockQuerier(mockCtrl)
	recorder := &DirectRecorder{Audit: querier}

	dbErr := errors.New("relation does not exist")
	querier.EXPECT().InsertAuditRecord(gomock.Any(), gomock.Any()).
		Return(audit.AuditRecord{}, dbErr).
		Times(1)

	err := recorder.Record(context.Background(), model.AuditRecord{RequestID: "req-3"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}
