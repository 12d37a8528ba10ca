package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"encore.app/analysis/model"
)

func TestComputeIsStableAndOrderInsensitive(t *testing.T) {
	a := Compute("summarize filings", map[string]string{"ticker": "ACME", "year": "2025"}, model.BackendSandbox, "tmpl-1")
	b := Compute("summarize filings", map[string]string{"year": "2025", "ticker": "ACME"}, model.BackendSandbox, "tmpl-1")

	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestComputeDistinguishesInputs(t *testing.T) {
	base := Compute("task", map[string]string{"k": "v"}, model.BackendSandbox, "tmpl")

	testCases := []struct {
		name  string
		other string
	}{
		{
			name:  "different_task",
			other: Compute("other task", map[string]string{"k": "v"}, model.BackendSandbox, "tmpl"),
		},
		{
			name:  "different_backend",
			other: Compute("task", map[string]string{"k": "v"}, model.BackendGraph, "tmpl"),
		},
		{
			name:  "different_template",
			other: Compute("task", map[string]string{"k": "v"}, model.BackendSandbox, "tmpl-2"),
		},
		{
			name:  "different_param_value",
			other: Compute("task", map[string]string{"k": "w"}, model.BackendSandbox, "tmpl"),
		},
		{
			name:  "extra_param",
			other: Compute("task", map[string]string{"k": "v", "k2": ""}, model.BackendSandbox, "tmpl"),
		},
		{
			// Length prefixes keep adjacent fields from bleeding together.
			name:  "shifted_field_boundary",
			other: Compute("taskk", map[string]string{"": "v"}, model.BackendSandbox, "tmpl"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEqual(t, base, tc.other)
		})
	}
}

func TestForWorkUnitMatchesCompute(t *testing.T) {
	req := &model.AnalysisRequest{
		Task:       "graph neighborhood",
		Params:     map[string]string{"entity": "acme-corp", "depth": "2"},
		Backend:    model.BackendGraph,
		TemplateID: "",
	}

	assert.Equal(t, Compute(req.Task, req.Params, req.Backend, req.TemplateID), ForWorkUnit(req))
}
