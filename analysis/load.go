package analysis

import (
	"context"

	"encore.app/analysis/model"
)

type LoadResponse struct {
	Load model.LoadSnapshot `json:"load"`
}

// GetLoad exposes the controller's live load metrics: in-flight count, queue
// depths per priority class, rolling error rate, and effective capacity.
//
//encore:api auth path=/api/v1/load method=GET
func (s *Service) GetLoad(ctx context.Context) (*LoadResponse, error) {
	return &LoadResponse{Load: s.business.Load(ctx)}, nil
}
