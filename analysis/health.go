package analysis

import (
	"context"
	"time"

	"encore.dev/rlog"

	"encore.app/analysis/artifactcache"
)

type HealthResponse struct {
	// Status is "ready", "degraded" (serving, but the sandbox is unreachable
	// or the admission controller is in degraded mode), or "unavailable"
	// (one of the required dependencies is down).
	Status string `json:"status"`

	Graph      bool `json:"graph"`
	Relational bool `json:"relational"`
	Cache      bool `json:"cache"`
	Sandbox    bool `json:"sandbox"`
	Throttled  bool `json:"throttled"`
}

// Health reports per-dependency readiness. The service is ready only when
// the graph, relational, and cache dependencies are individually reachable.
//
//encore:api public path=/api/v1/health method=GET
func (s *Service) Health(ctx context.Context) (*HealthResponse, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp := &HealthResponse{Throttled: s.ctrl.Degraded()}

	if err := s.graph.Healthy(probeCtx); err != nil {
		rlog.Warn("graph backend unreachable", "error", err)
	} else {
		resp.Graph = true
	}
	if err := s.db.Ping(probeCtx); err != nil {
		rlog.Warn("relational store unreachable", "error", err)
	} else {
		resp.Relational = true
	}
	if err := artifactcache.Ping(probeCtx); err != nil {
		rlog.Warn("cache cluster unreachable", "error", err)
	} else {
		resp.Cache = true
	}
	if err := s.sandbox.Healthy(probeCtx); err != nil {
		rlog.Warn("sandbox provider unreachable", "error", err)
	} else {
		resp.Sandbox = true
	}

	switch {
	case !resp.Graph || !resp.Relational || !resp.Cache:
		resp.Status = "unavailable"
	case !resp.Sandbox || resp.Throttled:
		resp.Status = "degraded"
	default:
		resp.Status = "ready"
	}
	return resp, nil
}
