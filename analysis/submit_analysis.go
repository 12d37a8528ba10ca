package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"encore.dev/beta/errs"
	"encore.dev/rlog"

	"encore.app/analysis/model"
)

type SubmitAnalysisRequest struct {
	RequestID string `header:"X-Request-ID" json:"-"`

	Task          string            `json:"task" validate:"required"`
	Params        map[string]string `json:"params,omitempty"`
	Backend       string            `json:"backend" validate:"required,oneof=sandbox graph"`
	TemplateID    string            `json:"template_id,omitempty"`
	ArtifactClass string            `json:"artifact_class,omitempty" validate:"omitempty,oneof=general vector"`
	Priority      string            `json:"priority,omitempty" validate:"omitempty,oneof=interactive batch"`
}

type AnalysisResponse struct {
	Analysis model.AnalysisStatus `json:"analysis"`
}

//encore:api auth path=/api/v1/analyses method=POST tag:dedupe
func (s *Service) SubmitAnalysis(ctx context.Context, req *SubmitAnalysisRequest) (*AnalysisResponse, error) {
	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}

	priority := model.Priority(req.Priority)
	if priority == "" {
		priority = model.PriorityInteractive
	}
	class := model.ArtifactClass(req.ArtifactClass)
	if class == "" {
		class = model.ArtifactClassGeneral
	}

	status, err := s.business.Submit(ctx, &model.AnalysisRequest{
		ID:            id,
		Task:          req.Task,
		Params:        req.Params,
		Backend:       model.BackendKind(req.Backend),
		TemplateID:    req.TemplateID,
		ArtifactClass: class,
		Priority:      priority,
		SubmittedAt:   time.Now(),
	})
	if err != nil {
		rlog.Error("analysis submission failed", "request_id", id, "error", err)
		var f *model.Failure
		if errors.As(err, &f) {
			return nil, f.APIError()
		}
		return nil, err
	}

	return &AnalysisResponse{Analysis: *status}, nil
}

// Validate implements validation for SubmitAnalysisRequest using go-playground/validator
func (r *SubmitAnalysisRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return &errs.Error{Code: errs.InvalidArgument, Message: err.Error()}
	}

	if r.Backend == string(model.BackendSandbox) && r.TemplateID == "" {
		return &errs.Error{Code: errs.InvalidArgument, Message: "template_id is required for sandbox execution"}
	}

	return nil
}
