package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/AlifSrSE/css/internal/domain/event"
)

// ScoringModelVersion is stamped on every persisted score.
const ScoringModelVersion = "1.0"

// CreditScore is the persisted record of one scoring run. A recalculation
// produces a new CreditScore; existing records are never updated.
type CreditScore struct {
	id            string
	applicationID string
	result        ScoreResult
	aiPrediction  *AIPrediction
	calculatedAt  time.Time
	calculatedBy  string
	modelVersion  string
	domainEvents  []event.DomainEvent
}

// NewCreditScore wraps a finished ScoreResult and raises CreditScoreCalculated.
func NewCreditScore(result ScoreResult, prediction *AIPrediction, calculatedBy string, now time.Time) CreditScore {
	if calculatedBy == "" {
		calculatedBy = "system"
	}
	id := uuid.New().String()
	cs := CreditScore{
		id:            id,
		applicationID: result.ApplicationID,
		result:        result,
		aiPrediction:  prediction,
		calculatedAt:  now,
		calculatedBy:  calculatedBy,
		modelVersion:  ScoringModelVersion,
	}
	cs.domainEvents = append(cs.domainEvents, event.NewCreditScoreCalculated(
		id, result.ApplicationID,
		result.FinalScore, result.Grade.String(), result.RiskTier.String(),
		result.DefaultProbability, result.MaxLoanAmount,
		result.HardFlagCount(), result.SoftFlagCount(),
		now,
	))
	return cs
}

// ReconstructCreditScore rebuilds a score from persistence without side-effects.
func ReconstructCreditScore(
	id, applicationID string,
	result ScoreResult,
	prediction *AIPrediction,
	calculatedAt time.Time,
	calculatedBy, modelVersion string,
) CreditScore {
	return CreditScore{
		id:            id,
		applicationID: applicationID,
		result:        result,
		aiPrediction:  prediction,
		calculatedAt:  calculatedAt,
		calculatedBy:  calculatedBy,
		modelVersion:  modelVersion,
	}
}

func (c CreditScore) ID() string                        { return c.id }
func (c CreditScore) ApplicationID() string             { return c.applicationID }
func (c CreditScore) Result() ScoreResult               { return c.result }
func (c CreditScore) AIPrediction() *AIPrediction       { return c.aiPrediction }
func (c CreditScore) CalculatedAt() time.Time           { return c.calculatedAt }
func (c CreditScore) CalculatedBy() string              { return c.calculatedBy }
func (c CreditScore) ModelVersion() string              { return c.modelVersion }
func (c CreditScore) DomainEvents() []event.DomainEvent { return c.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (c CreditScore) ClearEvents() CreditScore {
	next := c
	next.domainEvents = nil
	return next
}
