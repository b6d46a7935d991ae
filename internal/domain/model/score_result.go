package model

import (
	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

// Flag names raised by the scoring engine.
const (
	FlagActiveDefault           = "Active Default"
	FlagRevenueBelowObligations = "Revenue Below Obligations"
	FlagHighDebtBurden          = "High Debt Burden"
	FlagWeakGuarantor           = "Weak Guarantor"
	FlagNewBusiness             = "New Business"
)

// RedFlag is an override condition detected during scoring.
type RedFlag struct {
	Type        valueobject.FlagType `json:"flag_type"`
	Name        string               `json:"flag_name"`
	Description string               `json:"description"`
	Severity    valueobject.Severity `json:"severity"`
	Impact      string               `json:"impact"`
}

// IsHard reports whether the flag carries auto-reject intent.
func (f RedFlag) IsHard() bool { return f.Type.Equal(valueobject.FlagTypeHard) }

// ScoreResult is the complete, immutable outcome of one scoring run.
// PsychometricScore is the total used in the weighted sum: the measured
// total when responses were analysed, otherwise the neutral default.
type ScoreResult struct {
	ApplicationID      string                   `json:"application_id"`
	DataPoints         DataPointsResult         `json:"data_points"`
	CreditRatios       CreditRatiosResult       `json:"credit_ratios"`
	BorrowerAttributes BorrowerAttributesResult `json:"borrower_attributes"`
	Psychometric       *PsychometricResult      `json:"psychometric,omitempty"`
	PsychometricScore  int                      `json:"psychometric_score"`
	FinalScore         decimal.Decimal          `json:"final_score"`
	Grade              valueobject.Grade        `json:"grade"`
	LoanSlabAdjustment string                   `json:"loan_slab_adjustment"`
	RiskTier           valueobject.RiskTier     `json:"risk_level"`
	DefaultProbability decimal.Decimal          `json:"default_probability"`
	RedFlags           []RedFlag                `json:"red_flags"`
	MaxLoanAmount      decimal.Decimal          `json:"max_loan_amount"`
	Recommendations    []string                 `json:"recommendations"`
}

// HardFlagCount counts hard red flags.
func (r ScoreResult) HardFlagCount() int {
	n := 0
	for _, f := range r.RedFlags {
		if f.IsHard() {
			n++
		}
	}
	return n
}

// SoftFlagCount counts soft red flags.
func (r ScoreResult) SoftFlagCount() int {
	return len(r.RedFlags) - r.HardFlagCount()
}

// HasFlag reports whether a flag with the given name was raised.
func (r ScoreResult) HasFlag(name string) bool {
	for _, f := range r.RedFlags {
		if f.Name == name {
			return true
		}
	}
	return false
}

// ComponentScores lists the four component totals that feed the final score.
type ComponentScores struct {
	DataPoints         int             `json:"data_points"`
	CreditRatios       decimal.Decimal `json:"credit_ratios"`
	BorrowerAttributes decimal.Decimal `json:"borrower_attributes"`
	Psychometric       int             `json:"psychometric"`
}

// ScoringSummary is a compact view of a ScoreResult for listings and logs.
type ScoringSummary struct {
	FinalScore          decimal.Decimal      `json:"final_score"`
	Grade               valueobject.Grade    `json:"grade"`
	RiskTier            valueobject.RiskTier `json:"risk_level"`
	Components          ComponentScores      `json:"component_scores"`
	MaxLoanAmount       decimal.Decimal      `json:"max_loan_amount"`
	HardFlags           int                  `json:"hard_flags"`
	SoftFlags           int                  `json:"soft_flags"`
	RecommendationCount int                  `json:"recommendation_count"`
}

// Summary builds the compact view of the result.
func (r ScoreResult) Summary() ScoringSummary {
	return ScoringSummary{
		FinalScore: r.FinalScore,
		Grade:      r.Grade,
		RiskTier:   r.RiskTier,
		Components: ComponentScores{
			DataPoints:         r.DataPoints.Total,
			CreditRatios:       r.CreditRatios.Total,
			BorrowerAttributes: r.BorrowerAttributes.Total,
			Psychometric:       r.PsychometricScore,
		},
		MaxLoanAmount:       r.MaxLoanAmount,
		HardFlags:           r.HardFlagCount(),
		SoftFlags:           r.SoftFlagCount(),
		RecommendationCount: len(r.Recommendations),
	}
}

// AIPrediction is the advisory output of the external default-probability
// predictor. SuggestedGrade is zero when no adjustment is suggested; it never
// replaces the computed grade.
type AIPrediction struct {
	DefaultProbability float64              `json:"default_probability"`
	Confidence         float64              `json:"confidence"`
	ModelVersion       string               `json:"model_version"`
	RiskLevel          valueobject.RiskTier `json:"risk_level"`
	SuggestedGrade     valueobject.Grade    `json:"suggested_grade"`
	Reason             string               `json:"reason,omitempty"`
}
