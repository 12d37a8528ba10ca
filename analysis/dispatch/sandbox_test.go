package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encore.app/analysis/model"
)

func TestSandboxClientRun(t *testing.T) {
	testCases := []struct {
		name         string
		handler      http.HandlerFunc
		expectedKind model.FailureKind
		expectedOut  string
	}{
		{
			name: "successful_execution",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/executions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var body sandboxExecuteRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "tmpl-1", body.TemplateID)
				assert.Equal(t, "summarize", body.Task)

				_ = json.NewEncoder(w).Encode(sandboxExecuteResponse{Output: json.RawMessage(`{"rows":3}`)})
			},
			expectedOut: `{"rows":3}`,
		},
		{
			name: "task_level_error_is_execution_error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(sandboxExecuteResponse{Error: "NameError: undefined variable"})
			},
			expectedKind: model.FailureExecutionError,
		},
		{
			name: "server_error_is_transient",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			expectedKind: model.FailureBackendUnavailable,
		},
		{
			name: "rate_limit_is_transient",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			expectedKind: model.FailureBackendUnavailable,
		},
		{
			name: "client_error_is_permanent",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			expectedKind: model.FailureExecutionError,
		},
		{
			name: "malformed_response_is_execution_error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			expectedKind: model.FailureExecutionError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			client := NewSandboxClient(srv.URL, "test-key", 5*time.Second)
			out, err := client.Run(context.Background(), model.WorkUnit{
				RequestID:  "req-1",
				Backend:    model.BackendSandbox,
				TemplateID: "tmpl-1",
				Task:       "summarize",
			})

			if tc.expectedKind != "" {
				require.Error(t, err)
				assert.Equal(t, tc.expectedKind, model.AsFailure(err).Kind)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, tc.expectedOut, string(out))
			}
		})
	}
}

func TestSandboxClientUnreachableIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client := NewSandboxClient(srv.URL, "test-key", time.Second)
	_, err := client.Run(context.Background(), model.WorkUnit{Task: "t", TemplateID: "x"})
	require.Error(t, err)
	assert.Equal(t, model.FailureBackendUnavailable, model.AsFailure(err).Kind)
}

func TestSandboxClientHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewSandboxClient(srv.URL, "test-key", time.Second)
	assert.NoError(t, client.Healthy(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	client = NewSandboxClient(down.URL, "test-key", time.Second)
	assert.Error(t, client.Healthy(context.Background()))
}
