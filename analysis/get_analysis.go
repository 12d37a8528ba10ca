package analysis

import (
	"context"
	"errors"

	"encore.dev/beta/errs"
	"encore.dev/rlog"

	"encore.app/analysis/model"
)

//encore:api auth path=/api/v1/analyses/:id method=GET
func (s *Service) GetAnalysis(ctx context.Context, id string) (*AnalysisResponse, error) {
	if id == "" {
		return nil, &errs.Error{Code: errs.InvalidArgument, Message: "invalid analysis ID"}
	}

	status, err := s.business.Status(ctx, id)
	if err != nil {
		rlog.Error("failed to resolve analysis status", "error", err, "id", id)
		var f *model.Failure
		if errors.As(err, &f) {
			return nil, f.APIError()
		}
		return nil, err
	}

	return &AnalysisResponse{Analysis: *status}, nil
}
