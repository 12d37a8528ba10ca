package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"encore.app/analysis/model"
)

// SandboxClient submits task payloads to the external sandboxed
// code-execution provider. Executions are identified by a template id and
// bounded by the caller's context deadline.
type SandboxClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSandboxClient creates a client for the sandbox provider at baseURL.
func NewSandboxClient(baseURL, apiKey string, timeout time.Duration) *SandboxClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &SandboxClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type sandboxExecuteRequest struct {
	TemplateID string            `json:"template_id"`
	Task       string            `json:"task"`
	Params     map[string]string `json:"params,omitempty"`
}

type sandboxExecuteResponse struct {
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error,omitempty"`
}

// Run executes the work unit's task in the sandbox and returns its output.
// A task-level error reported by the sandbox is an ExecutionError and is
// never retried.
func (c *SandboxClient) Run(ctx context.Context, wu model.WorkUnit) ([]byte, error) {
	body, err := json.Marshal(sandboxExecuteRequest{
		TemplateID: wu.TemplateID,
		Task:       wu.Task,
		Params:     wu.Params,
	})
	if err != nil {
		return nil, model.NewFailure(model.FailureExecutionError, "failed to encode sandbox request: "+err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/executions", bytes.NewReader(body))
	if err != nil {
		return nil, model.NewFailure(model.FailureExecutionError, "failed to build sandbox request: "+err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, model.NewFailure(model.FailureTimeout, err.Error())
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		// Connection resets, refused connections, DNS failures: transient.
		return nil, model.NewFailure(model.FailureBackendUnavailable, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewFailure(model.FailureBackendUnavailable, "failed to read sandbox response: "+err.Error())
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, model.NewFailure(model.FailureBackendUnavailable, fmt.Sprintf("sandbox returned status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, model.NewFailure(model.FailureExecutionError, fmt.Sprintf("sandbox rejected request with status %d", resp.StatusCode))
	}

	var out sandboxExecuteResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, model.NewFailure(model.FailureExecutionError, "failed to decode sandbox response: "+err.Error())
	}
	if out.Error != "" {
		return nil, model.NewFailure(model.FailureExecutionError, out.Error)
	}
	return out.Output, nil
}

// Healthy probes the sandbox provider's health endpoint.
func (c *SandboxClient) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sandbox health returned status %d", resp.StatusCode)
	}
	return nil
}
