package grpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/application/usecase"
	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/service"
	"github.com/AlifSrSE/css/internal/infrastructure/schema"
	"github.com/AlifSrSE/css/pkg/auth"
)

// callerFromContext returns the authenticated subject, or fallback when the
// call carries no claims.
func callerFromContext(ctx context.Context, fallback string) string {
	if claims, ok := auth.ClaimsFromContext(ctx); ok && claims.Subject != "" {
		return claims.Subject
	}
	return fallback
}

// Compile-time assertion that CreditScoringHandler implements CreditScoringServiceServer.
var _ CreditScoringServiceServer = (*CreditScoringHandler)(nil)

// CreditScoringHandler implements the gRPC CreditScoringServiceServer interface.
type CreditScoringHandler struct {
	UnimplementedCreditScoringServiceServer
	submit       *usecase.SubmitApplicationUseCase
	calculate    *usecase.CalculateScoreUseCase
	bulk         *usecase.BulkCalculateUseCase
	getScore     *usecase.GetScoreUseCase
	dashboard    *usecase.DashboardStatsUseCase
	policies     *usecase.PolicyStore
	psychometric *usecase.PsychometricUseCase
	validator    *schema.Validator
	strict       bool
	logger       *slog.Logger
}

// UseCases groups the application services the handler delegates to.
type UseCases struct {
	Submit       *usecase.SubmitApplicationUseCase
	Calculate    *usecase.CalculateScoreUseCase
	Bulk         *usecase.BulkCalculateUseCase
	GetScore     *usecase.GetScoreUseCase
	Dashboard    *usecase.DashboardStatsUseCase
	Policies     *usecase.PolicyStore
	Psychometric *usecase.PsychometricUseCase
}

// NewCreditScoringHandler creates a new gRPC handler. When strictPsychometric
// is set every CalculateScore call treats invalid responses as fatal.
func NewCreditScoringHandler(
	uc UseCases,
	validator *schema.Validator,
	strictPsychometric bool,
	logger *slog.Logger,
) *CreditScoringHandler {
	return &CreditScoringHandler{
		submit:       uc.Submit,
		calculate:    uc.Calculate,
		bulk:         uc.Bulk,
		getScore:     uc.GetScore,
		dashboard:    uc.Dashboard,
		policies:     uc.Policies,
		psychometric: uc.Psychometric,
		validator:    validator,
		strict:       strictPsychometric,
		logger:       logger,
	}
}

// Request/response message types.

// SubmitApplicationRequest carries a raw application document, validated
// against the application schema before decoding.
type SubmitApplicationRequest struct {
	ApplicationID       string          `json:"application_id"`
	Application         json.RawMessage `json:"application"`
	LoanAmountRequested string          `json:"loan_amount_requested"`
	LoanPurpose         string          `json:"loan_purpose"`
}

type SubmitApplicationResponse struct {
	Application dto.ApplicationResponse `json:"application"`
}

type CalculateScoreRequest struct {
	ApplicationID         string                       `json:"application_id"`
	ForceRecalculate      bool                         `json:"force_recalculate"`
	StrictPsychometric    bool                         `json:"strict_psychometric"`
	PsychometricResponses *model.PsychometricResponses `json:"psychometric_responses,omitempty"`
}

type ScoreResponse struct {
	Score dto.CreditScoreResponse `json:"score"`
}

type BulkCalculateRequest struct {
	ApplicationIDs   []string `json:"application_ids"`
	ForceRecalculate bool     `json:"force_recalculate"`
}

type BulkCalculateResponse = dto.BulkCalculateResponse

type GetScoreRequest struct {
	ApplicationID string `json:"application_id"`
}

// DashboardStatsRequest bounds the window with optional RFC 3339 times.
type DashboardStatsRequest struct {
	Since string `json:"since,omitempty"`
	Until string `json:"until,omitempty"`
}

type DashboardStatsResponse = dto.DashboardStats

type GetPolicyRequest struct{}

type PolicyResponse = dto.PolicyResponse

type UpdateWeightsRequest struct {
	Weights service.Weights `json:"weights"`
}

type UpdateThresholdsRequest struct {
	Thresholds service.GradeThresholds `json:"grade_thresholds"`
}

type QuestionsRequest struct{}

type QuestionsResponse = dto.QuestionsResponse

type ValidatePsychometricRequest struct {
	Responses model.PsychometricResponses `json:"psychometric_responses"`
}

type ValidatePsychometricResponse = model.PsychometricValidation

// SubmitApplication validates and stores a new application.
func (h *CreditScoringHandler) SubmitApplication(ctx context.Context, req *SubmitApplicationRequest) (*SubmitApplicationResponse, error) {
	if req == nil || len(req.Application) == 0 {
		return nil, status.Error(codes.InvalidArgument, "application is required")
	}
	if err := h.validator.ValidateJSON(req.Application); err != nil {
		return nil, toStatus(err)
	}

	var data model.ApplicationData
	if err := json.Unmarshal(req.Application, &data); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode application: %v", err)
	}

	amount := decimal.Zero
	if req.LoanAmountRequested != "" {
		var err error
		if amount, err = decimal.NewFromString(req.LoanAmountRequested); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid loan_amount_requested: %v", err)
		}
	}

	app, err := h.submit.Execute(ctx, dto.SubmitApplicationRequest{
		ApplicationID:       req.ApplicationID,
		Data:                data,
		SubmittedBy:         callerFromContext(ctx, ""),
		LoanAmountRequested: amount,
		LoanPurpose:         req.LoanPurpose,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to submit application", "error", err)
		return nil, toStatus(err)
	}
	return &SubmitApplicationResponse{Application: app}, nil
}

// CalculateScore scores one application.
func (h *CreditScoringHandler) CalculateScore(ctx context.Context, req *CalculateScoreRequest) (*ScoreResponse, error) {
	if req == nil || req.ApplicationID == "" {
		return nil, status.Error(codes.InvalidArgument, "application_id is required")
	}

	resp, err := h.calculate.Execute(ctx, dto.CalculateScoreRequest{
		ApplicationID:      req.ApplicationID,
		ForceRecalculate:   req.ForceRecalculate,
		StrictPsychometric: req.StrictPsychometric || h.strict,
		Psychometric:       req.PsychometricResponses,
		CalculatedBy:       callerFromContext(ctx, "api"),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to calculate score",
			"application_id", req.ApplicationID, "error", err)
		return nil, toStatus(err)
	}
	return &ScoreResponse{Score: resp}, nil
}

// BulkCalculate scores several applications. Per-item failures are reported
// in the response, never as an RPC error.
func (h *CreditScoringHandler) BulkCalculate(ctx context.Context, req *BulkCalculateRequest) (*BulkCalculateResponse, error) {
	if req == nil || len(req.ApplicationIDs) == 0 {
		return nil, status.Error(codes.InvalidArgument, "application_ids is required")
	}

	resp := h.bulk.Execute(ctx, dto.BulkCalculateRequest{
		ApplicationIDs:   req.ApplicationIDs,
		ForceRecalculate: req.ForceRecalculate,
		CalculatedBy:     callerFromContext(ctx, "api"),
	})
	return &resp, nil
}

// GetScore returns the latest stored score.
func (h *CreditScoringHandler) GetScore(ctx context.Context, req *GetScoreRequest) (*ScoreResponse, error) {
	if req == nil || req.ApplicationID == "" {
		return nil, status.Error(codes.InvalidArgument, "application_id is required")
	}

	resp, err := h.getScore.Execute(ctx, req.ApplicationID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ScoreResponse{Score: resp}, nil
}

// DashboardStats aggregates stored scores.
func (h *CreditScoringHandler) DashboardStats(ctx context.Context, req *DashboardStatsRequest) (*DashboardStatsResponse, error) {
	if req == nil {
		req = &DashboardStatsRequest{}
	}
	since, err := parseTime("since", req.Since)
	if err != nil {
		return nil, err
	}
	until, err := parseTime("until", req.Until)
	if err != nil {
		return nil, err
	}
	if !since.IsZero() && !until.IsZero() && until.Before(since) {
		return nil, status.Error(codes.InvalidArgument, "until must not be before since")
	}

	stats, err := h.dashboard.Execute(ctx, dto.DashboardStatsRequest{Since: since, Until: until})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build dashboard stats", "error", err)
		return nil, toStatus(err)
	}
	return &stats, nil
}

// GetPolicy returns the active scoring policy.
func (h *CreditScoringHandler) GetPolicy(context.Context, *GetPolicyRequest) (*PolicyResponse, error) {
	p := h.policies.Policy()
	return &p, nil
}

// UpdateWeights replaces the component weights.
func (h *CreditScoringHandler) UpdateWeights(ctx context.Context, req *UpdateWeightsRequest) (*PolicyResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "weights are required")
	}
	p, err := h.policies.UpdateWeights(ctx, dto.UpdateWeightsRequest{
		Weights:   req.Weights,
		UpdatedBy: callerFromContext(ctx, "unknown"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &p, nil
}

// UpdateThresholds replaces the grade thresholds.
func (h *CreditScoringHandler) UpdateThresholds(ctx context.Context, req *UpdateThresholdsRequest) (*PolicyResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "grade_thresholds are required")
	}
	p, err := h.policies.UpdateThresholds(ctx, dto.UpdateThresholdsRequest{
		Thresholds: req.Thresholds,
		UpdatedBy:  callerFromContext(ctx, "unknown"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &p, nil
}

// Questions returns the psychometric question bank.
func (h *CreditScoringHandler) Questions(context.Context, *QuestionsRequest) (*QuestionsResponse, error) {
	q := h.psychometric.Questions()
	return &q, nil
}

// ValidatePsychometric checks a response set without scoring it.
func (h *CreditScoringHandler) ValidatePsychometric(_ context.Context, req *ValidatePsychometricRequest) (*ValidatePsychometricResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "psychometric_responses are required")
	}
	v := h.psychometric.Validate(req.Responses)
	return &v, nil
}

func parseTime(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid %s: %v", field, err)
	}
	return t, nil
}
