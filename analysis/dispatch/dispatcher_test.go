package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"encore.app/analysis/mocks/dispatch/backend_mock"
	"encore.app/analysis/model"
)

// lineageRecorder captures emitted events in order.
type lineageRecorder struct {
	events []model.LineageEvent
}

func (r *lineageRecorder) RecordLineage(event model.LineageEvent) {
	r.events = append(r.events, event)
}

func sandboxUnit(id string) model.WorkUnit {
	return model.WorkUnit{
		RequestID:   id,
		Fingerprint: "fp-" + id,
		Backend:     model.BackendSandbox,
		TemplateID:  "tmpl-1",
		Task:        "summarize",
		Deadline:    time.Now().Add(time.Minute),
	}
}

func graphUnit(id string) model.WorkUnit {
	wu := sandboxUnit(id)
	wu.Backend = model.BackendGraph
	wu.TemplateID = ""
	return wu
}

func newTestDispatcher(sandbox, graph Backend, lineage LineageSink, cfg Config) (*dispatcher, *[]time.Duration) {
	d := New(sandbox, graph, lineage, cfg).(*dispatcher)
	var backoffs []time.Duration
	d.sleep = func(ctx context.Context, dur time.Duration) error {
		backoffs = append(backoffs, dur)
		return nil
	}
	return d, &backoffs
}

func TestDispatchSandboxSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sandbox := backend_mock.NewMockBackend(ctrl)
	lineage := &lineageRecorder{}
	d, _ := newTestDispatcher(sandbox, backend_mock.NewMockBackend(ctrl), lineage, Config{})

	wu := sandboxUnit("r1")
	sandbox.EXPECT().Run(gomock.Any(), wu).Return([]byte(`{"ok":true}`), nil).Times(1)

	art, err := d.Dispatch(context.Background(), wu)
	require.NoError(t, err)
	assert.Equal(t, wu.Fingerprint, art.Fingerprint)
	assert.Equal(t, []byte(`{"ok":true}`), art.Payload)
	assert.Equal(t, int64(len(art.Payload)), art.Size)
	assert.Equal(t, model.BackendSandbox, art.Backend)

	require.Len(t, lineage.events, 1)
	assert.Equal(t, "ok", lineage.events[0].Outcome)
	assert.Equal(t, 1, lineage.events[0].Attempt)
}

func TestDispatchSandboxIsNeverRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sandbox := backend_mock.NewMockBackend(ctrl)
	lineage := &lineageRecorder{}
	d, backoffs := newTestDispatcher(sandbox, backend_mock.NewMockBackend(ctrl), lineage, Config{MaxAttempts: 3})

	wu := sandboxUnit("r2")
	sandbox.EXPECT().Run(gomock.Any(), wu).
		Return(nil, model.NewFailure(model.FailureBackendUnavailable, "provider 503")).
		Times(1)

	_, err := d.Dispatch(context.Background(), wu)
	require.Error(t, err)
	assert.Equal(t, model.FailureBackendUnavailable, model.AsFailure(err).Kind)
	assert.Empty(t, *backoffs)
	require.Len(t, lineage.events, 1)
	assert.Equal(t, string(model.FailureBackendUnavailable), lineage.events[0].Outcome)
}

func TestDispatchGraphRetriesTransientFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	graph := backend_mock.NewMockBackend(ctrl)
	lineage := &lineageRecorder{}
	d, backoffs := newTestDispatcher(backend_mock.NewMockBackend(ctrl), graph, lineage, Config{
		MaxAttempts: 3,
		BaseBackoff: 50 * time.Millisecond,
	})

	wu := graphUnit("r3")
	gomock.InOrder(
		graph.EXPECT().Run(gomock.Any(), wu).Return(nil, model.NewFailure(model.FailureBackendUnavailable, "connection refused")),
		graph.EXPECT().Run(gomock.Any(), wu).Return(nil, model.NewFailure(model.FailureBackendUnavailable, "connection refused")),
		graph.EXPECT().Run(gomock.Any(), wu).Return([]byte(`[{"n":1}]`), nil),
	)

	art, err := d.Dispatch(context.Background(), wu)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"n":1}]`), art.Payload)

	// Exponential backoff, strictly increasing.
	require.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}, *backoffs)

	// One lineage event per attempt.
	require.Len(t, lineage.events, 3)
	for i, ev := range lineage.events {
		assert.Equal(t, i+1, ev.Attempt)
	}
	assert.Equal(t, string(model.FailureBackendUnavailable), lineage.events[0].Outcome)
	assert.Equal(t, "ok", lineage.events[2].Outcome)
}

func TestDispatchGraphStopsAtAttemptBound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	graph := backend_mock.NewMockBackend(ctrl)
	d, backoffs := newTestDispatcher(backend_mock.NewMockBackend(ctrl), graph, &lineageRecorder{}, Config{
		MaxAttempts: 3,
		BaseBackoff: 10 * time.Millisecond,
	})

	wu := graphUnit("r4")
	graph.EXPECT().Run(gomock.Any(), wu).
		Return(nil, model.NewFailure(model.FailureBackendUnavailable, "connection refused")).
		Times(3)

	_, err := d.Dispatch(context.Background(), wu)
	require.Error(t, err)
	assert.Equal(t, model.FailureBackendUnavailable, model.AsFailure(err).Kind)
	// No sleep after the final attempt.
	assert.Len(t, *backoffs, 2)
}

func TestDispatchGraphDoesNotRetryPermanentFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	graph := backend_mock.NewMockBackend(ctrl)
	d, backoffs := newTestDispatcher(backend_mock.NewMockBackend(ctrl), graph, &lineageRecorder{}, Config{MaxAttempts: 3})

	wu := graphUnit("r5")
	graph.EXPECT().Run(gomock.Any(), wu).
		Return(nil, model.NewFailure(model.FailureExecutionError, "malformed query")).
		Times(1)

	_, err := d.Dispatch(context.Background(), wu)
	require.Error(t, err)
	assert.Equal(t, model.FailureExecutionError, model.AsFailure(err).Kind)
	assert.Empty(t, *backoffs)
}

func TestDispatchDeadlineSurfacesAsTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sandbox := backend_mock.NewMockBackend(ctrl)
	d, _ := newTestDispatcher(sandbox, backend_mock.NewMockBackend(ctrl), &lineageRecorder{}, Config{})

	wu := sandboxUnit("r6")
	wu.Deadline = time.Now().Add(10 * time.Millisecond)
	sandbox.EXPECT().Run(gomock.Any(), wu).DoAndReturn(func(ctx context.Context, _ model.WorkUnit) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := d.Dispatch(context.Background(), wu)
	require.Error(t, err)
	assert.Equal(t, model.FailureTimeout, model.AsFailure(err).Kind)
}

func TestDispatchUnknownBackend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d, _ := newTestDispatcher(backend_mock.NewMockBackend(ctrl), backend_mock.NewMockBackend(ctrl), nil, Config{})

	wu := sandboxUnit("r7")
	wu.Backend = model.BackendKind("quantum")

	_, err := d.Dispatch(context.Background(), wu)
	require.Error(t, err)
	assert.Equal(t, model.FailureExecutionError, model.AsFailure(err).Kind)
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		ctx      context.Context
		err      error
		expected model.FailureKind
	}{
		{
			name:     "deadline_exceeded",
			ctx:      context.Background(),
			err:      context.DeadlineExceeded,
			expected: model.FailureTimeout,
		},
		{
			name:     "typed_failure_passthrough",
			ctx:      context.Background(),
			err:      model.NewFailure(model.FailureBackendUnavailable, "down"),
			expected: model.FailureBackendUnavailable,
		},
		{
			name:     "opaque_error",
			ctx:      context.Background(),
			err:      errors.New("something odd"),
			expected: model.FailureExecutionError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.ctx, tc.err)
			assert.Equal(t, tc.expected, model.AsFailure(err).Kind)
		})
	}
}

func TestClassifyPreservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := classify(ctx, context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
}
