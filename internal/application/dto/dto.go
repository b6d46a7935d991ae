package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/service"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// SubmitApplicationRequest carries a new credit application.
type SubmitApplicationRequest struct {
	ApplicationID       string                `json:"application_id,omitempty"`
	Data                model.ApplicationData `json:"application"`
	SubmittedBy         string                `json:"submitted_by"`
	LoanAmountRequested decimal.Decimal       `json:"loan_amount_requested"`
	LoanPurpose         string                `json:"loan_purpose"`
}

// CalculateScoreRequest asks for an application to be scored. An existing
// score is returned unless ForceRecalculate is set. With StrictPsychometric
// an invalid response set fails the request instead of being ignored.
type CalculateScoreRequest struct {
	ApplicationID      string                       `json:"application_id"`
	ForceRecalculate   bool                         `json:"force_recalculate"`
	StrictPsychometric bool                         `json:"strict_psychometric"`
	Psychometric       *model.PsychometricResponses `json:"psychometric_responses,omitempty"`
	CalculatedBy       string                       `json:"calculated_by,omitempty"`
}

// BulkCalculateRequest scores several applications.
type BulkCalculateRequest struct {
	ApplicationIDs   []string `json:"application_ids"`
	ForceRecalculate bool     `json:"force_recalculate"`
	CalculatedBy     string   `json:"calculated_by,omitempty"`
}

// DashboardStatsRequest bounds the scores aggregated by calculation time.
// Zero times are unbounded.
type DashboardStatsRequest struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

// UpdateWeightsRequest replaces the component weights.
type UpdateWeightsRequest struct {
	Weights   service.Weights `json:"weights"`
	UpdatedBy string          `json:"updated_by"`
}

// UpdateThresholdsRequest replaces the grade thresholds.
type UpdateThresholdsRequest struct {
	Thresholds service.GradeThresholds `json:"grade_thresholds"`
	UpdatedBy  string                  `json:"updated_by"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ApplicationResponse is the external representation of an application.
type ApplicationResponse struct {
	ID                  string          `json:"application_id"`
	Status              string          `json:"status"`
	BusinessName        string          `json:"business_name"`
	BusinessType        string          `json:"business_type"`
	SubmittedBy         string          `json:"submitted_by"`
	LoanAmountRequested decimal.Decimal `json:"loan_amount_requested"`
	LoanPurpose         string          `json:"loan_purpose"`
	Version             int             `json:"version"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// CreditScoreResponse is the external representation of a stored score.
// Recalculated is false when an existing score was returned.
type CreditScoreResponse struct {
	ID           string               `json:"score_id"`
	Result       model.ScoreResult    `json:"result"`
	Summary      model.ScoringSummary `json:"summary"`
	AIPrediction *model.AIPrediction  `json:"ai_prediction,omitempty"`
	CalculatedAt time.Time            `json:"calculated_at"`
	CalculatedBy string               `json:"calculated_by"`
	ModelVersion string               `json:"version"`
	Recalculated bool                 `json:"recalculated"`
}

// BulkCalculateResponse reports the outcome of a bulk run.
type BulkCalculateResponse struct {
	Processed  int      `json:"processed"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}

// RedFlagStat counts how often a red flag was raised.
type RedFlagStat struct {
	Name       string          `json:"flag_name"`
	Type       string          `json:"flag_type"`
	Severity   string          `json:"severity"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// MonthlyTrend aggregates scores calculated in one calendar month.
type MonthlyTrend struct {
	Month        string          `json:"month"`
	AverageScore decimal.Decimal `json:"avg_score"`
	Count        int             `json:"count"`
	ApprovalRate decimal.Decimal `json:"approval_rate"`
}

// DashboardStats summarises a set of stored scores.
type DashboardStats struct {
	TotalScores       int             `json:"total_scores"`
	AverageScore      decimal.Decimal `json:"average_score"`
	ApprovalRate      decimal.Decimal `json:"approval_rate"`
	GradeDistribution map[string]int  `json:"grade_distribution"`
	RiskDistribution  map[string]int  `json:"risk_distribution"`
	TopRedFlags       []RedFlagStat   `json:"top_red_flags"`
	MonthlyTrend      []MonthlyTrend  `json:"monthly_trends"`
}

// PolicyResponse is the active scoring policy.
type PolicyResponse struct {
	Weights    service.Weights         `json:"weights"`
	Thresholds service.GradeThresholds `json:"grade_thresholds"`
}

// QuestionsResponse lists the psychometric questionnaire.
type QuestionsResponse struct {
	Questions []model.PsychometricQuestion `json:"questions"`
}
