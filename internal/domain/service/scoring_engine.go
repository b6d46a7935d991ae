package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// ScoringEngine – orchestrates the four component models
// ---------------------------------------------------------------------------

var (
	maxDefaultProbability = decimal.RequireFromString("0.95")
	hardFlagPenalty       = decimal.RequireFromString("0.20")
	softFlagPenalty       = decimal.RequireFromString("0.05")

	loanTermYears      = decimal.NewFromInt(2)
	incomeMultiple     = decimal.NewFromInt(6)
	monthsPerYear      = decimal.NewFromInt(12)
	availableIncomeCap = decimal.RequireFromString("0.6")
	assetCap           = decimal.RequireFromString("0.6")
)

// softFlagsForHighRisk is the soft-flag count that escalates the tier to high.
const softFlagsForHighRisk = 3

// ScoringEngine runs one application through data points, credit ratios,
// borrower attributes and the optional psychometric model, then combines
// them under a fixed ScoringPolicy. It holds no mutable state and is safe
// for concurrent use.
type ScoringEngine struct {
	policy       ScoringPolicy
	dataPoints   *DataPointsModel
	creditRatios *CreditRatiosModel
	attributes   *BorrowerAttributesModel
	psychometric *PsychometricModel
}

// NewScoringEngine validates the policy and returns an engine bound to it.
// psychometric may be nil, in which case a model on the wall clock is used.
func NewScoringEngine(policy ScoringPolicy, psychometric *PsychometricModel) (*ScoringEngine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if psychometric == nil {
		psychometric = NewPsychometricModel(nil)
	}
	return &ScoringEngine{
		policy:       policy,
		dataPoints:   NewDataPointsModel(),
		creditRatios: NewCreditRatiosModel(),
		attributes:   NewBorrowerAttributesModel(),
		psychometric: psychometric,
	}, nil
}

// Policy returns the policy the engine was built with.
func (e *ScoringEngine) Policy() ScoringPolicy { return e.policy }

// Score produces the complete result for one application. responses may be
// nil or empty, in which case the neutral psychometric score is used. Either a full
// result or a *ComputationError is returned.
func (e *ScoringEngine) Score(
	applicationID string,
	app model.ApplicationData,
	responses *model.PsychometricResponses,
) (model.ScoreResult, error) {
	res := model.ScoreResult{ApplicationID: applicationID}
	var err error

	if res.DataPoints, err = stage(applicationID, StageDataPoints, func() model.DataPointsResult {
		return e.dataPoints.Score(app)
	}); err != nil {
		return model.ScoreResult{}, err
	}
	if res.CreditRatios, err = stage(applicationID, StageCreditRatios, func() model.CreditRatiosResult {
		return e.creditRatios.Score(app)
	}); err != nil {
		return model.ScoreResult{}, err
	}
	if res.BorrowerAttributes, err = stage(applicationID, StageBorrowerAttributes, func() model.BorrowerAttributesResult {
		return e.attributes.Score(app)
	}); err != nil {
		return model.ScoreResult{}, err
	}

	res.PsychometricScore = NeutralPsychometricScore
	if responses != nil && len(responses.Answers) > 0 {
		psych, err := stage(applicationID, StagePsychometric, func() model.PsychometricResult {
			return e.psychometric.Analyze(*responses)
		})
		if err != nil {
			return model.ScoreResult{}, err
		}
		res.Psychometric = &psych
		res.PsychometricScore = psych.Total
	}

	if res.FinalScore, err = stage(applicationID, StageCombine, func() decimal.Decimal {
		return e.combine(res)
	}); err != nil {
		return model.ScoreResult{}, err
	}
	res.Grade = e.policy.Thresholds.GradeFor(res.FinalScore)
	res.LoanSlabAdjustment = res.Grade.SlabAdjustment()

	if res.RedFlags, err = stage(applicationID, StageFlags, func() []model.RedFlag {
		return redFlags(app, res.CreditRatios)
	}); err != nil {
		return model.ScoreResult{}, err
	}

	if _, err = stage(applicationID, StageFinalize, func() struct{} {
		res.MaxLoanAmount = maxLoanAmount(app.Financial, res.Grade)
		res.RiskTier, res.DefaultProbability = assessRisk(res.FinalScore, res.HardFlagCount(), res.SoftFlagCount())
		res.Recommendations = recommendations(res.Grade, res.RedFlags)
		return struct{}{}
	}); err != nil {
		return model.ScoreResult{}, err
	}
	return res, nil
}

// stage runs fn and converts a panic into a ComputationError for the stage.
func stage[T any](applicationID, name string, fn func() T) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ComputationError{Stage: name, ApplicationID: applicationID, Err: fmt.Errorf("%v", r)}
		}
	}()
	return fn(), nil
}

// combine computes the weighted final score, rounded half-up to 2 places.
func (e *ScoringEngine) combine(res model.ScoreResult) decimal.Decimal {
	w := e.policy.Weights
	sum := decimal.NewFromInt(int64(res.DataPoints.Total * w.DataPoints)).
		Add(res.CreditRatios.Total.Mul(decimal.NewFromInt(int64(w.CreditRatios)))).
		Add(res.BorrowerAttributes.Total.Mul(decimal.NewFromInt(int64(w.BorrowerAttributes)))).
		Add(decimal.NewFromInt(int64(res.PsychometricScore * w.Psychometric)))
	return sum.Div(hundred).Round(2)
}

// maxLoanAmount is the lowest of the income, debt-capacity and asset caps,
// scaled by the grade multiplier and floored at zero.
func maxLoanAmount(f model.FinancialData, grade valueobject.Grade) decimal.Decimal {
	income := f.MonthlyIncome

	incomeBased := income.Mul(incomeMultiple).Mul(loanTermYears)
	debtBased := income.Sub(f.TotalMonthlyInstallments()).
		Mul(availableIncomeCap).Mul(monthsPerYear).Mul(loanTermYears)
	assetBased := f.TotalAssets.Mul(assetCap)

	amount := decimal.Min(incomeBased, debtBased, assetBased).Mul(grade.LoanMultiplier())
	return decimal.Max(decimal.Zero, amount).Round(2)
}

// assessRisk derives the tier and default probability from the score, then
// applies the flag penalties. Any hard flag forces very_high; three or more
// soft flags force high.
func assessRisk(score decimal.Decimal, hard, soft int) (valueobject.RiskTier, decimal.Decimal) {
	tier, probability := valueobject.RiskTierFromScore(score)

	probability = probability.
		Add(hardFlagPenalty.Mul(decimal.NewFromInt(int64(hard)))).
		Add(softFlagPenalty.Mul(decimal.NewFromInt(int64(soft))))
	probability = decimal.Min(maxDefaultProbability, probability).Round(3)

	switch {
	case hard > 0:
		tier = valueobject.RiskTierVeryHigh
	case soft >= softFlagsForHighRisk:
		tier = valueobject.RiskTierHigh
	}
	return tier, probability
}

func recommendations(grade valueobject.Grade, flags []model.RedFlag) []string {
	var out []string
	switch grade {
	case valueobject.GradeA:
		out = []string{
			"Eligible for premium loan terms with reduced interest rates",
			"Consider offering increased loan limits",
			"Fast-track application processing recommended",
		}
	case valueobject.GradeB:
		out = []string{
			"Approve under standard loan terms",
			"Regular monitoring recommended",
		}
	case valueobject.GradeC:
		out = []string{
			"Approve with restricted terms and higher interest rates",
			"Implement enhanced monitoring and follow-up",
			"Consider requiring additional collateral",
		}
	default:
		out = []string{
			"Reject application due to high risk",
			"Suggest reapplication after addressing identified issues",
		}
	}

	for _, f := range flags {
		if f.IsHard() {
			continue
		}
		switch f.Name {
		case model.FlagWeakGuarantor:
			out = append(out, "Recommend stronger guarantor or additional collateral")
		case model.FlagNewBusiness:
			out = append(out, "Consider shorter loan tenure with regular reviews")
		}
	}
	return out
}
