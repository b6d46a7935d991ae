package service

import (
	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

const (
	upgradeMaxProbability   = 0.05
	upgradeMinConfidence    = 0.8
	downgradeMinProbability = 0.25
	downgradeMinConfidence  = 0.75
)

// AssessPrediction turns a raw predictor output into an advisory
// AIPrediction for a result graded grade. The suggestion is informational;
// callers never apply it to the computed grade.
func AssessPrediction(probability, confidence float64, modelVersion string, grade valueobject.Grade) model.AIPrediction {
	p := model.AIPrediction{
		DefaultProbability: probability,
		Confidence:         confidence,
		ModelVersion:       modelVersion,
		RiskLevel:          valueobject.RiskTierFromProbability(probability),
	}

	switch {
	case probability < upgradeMaxProbability && confidence > upgradeMinConfidence:
		if up := grade.Upgrade(); !up.Equal(grade) {
			p.SuggestedGrade = up
			p.Reason = "Very low predicted default probability"
		}
	case probability > downgradeMinProbability && confidence > downgradeMinConfidence:
		if down := grade.Downgrade(); !down.Equal(grade) {
			p.SuggestedGrade = down
			p.Reason = "High predicted default probability"
		}
	}
	return p
}
