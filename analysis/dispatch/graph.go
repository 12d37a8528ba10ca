package dispatch

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"encore.app/analysis/model"
)

// GraphClient issues parameterized, read-only queries against the graph
// database. Queries are idempotent, so the dispatcher may retry them.
type GraphClient struct {
	driver neo4j.DriverWithContext
}

// NewGraphClient connects to the graph database endpoint.
func NewGraphClient(uri, username, password string) (*GraphClient, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	return &GraphClient{driver: driver}, nil
}

// Run executes the work unit's query and returns the result rows as JSON.
func (g *GraphClient) Run(ctx context.Context, wu model.WorkUnit) ([]byte, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	params := make(map[string]any, len(wu.Params))
	for k, v := range wu.Params {
		params[k] = v
	}

	result, err := session.Run(ctx, wu.Task, params)
	if err != nil {
		return nil, classifyGraphErr(err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, classifyGraphErr(err)
	}

	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.AsMap())
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, model.NewFailure(model.FailureExecutionError, "failed to encode graph result: "+err.Error())
	}
	return payload, nil
}

// Healthy verifies connectivity to the graph database.
func (g *GraphClient) Healthy(ctx context.Context) error {
	return g.driver.VerifyConnectivity(ctx)
}

// Close releases the underlying driver.
func (g *GraphClient) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

func classifyGraphErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return model.NewFailure(model.FailureTimeout, err.Error())
	case errors.Is(err, context.Canceled):
		return err
	case neo4j.IsConnectivityError(err):
		return model.NewFailure(model.FailureBackendUnavailable, err.Error())
	default:
		return model.NewFailure(model.FailureExecutionError, err.Error())
	}
}
