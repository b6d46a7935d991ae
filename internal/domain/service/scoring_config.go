package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Weights – component percentages of the final score
// ---------------------------------------------------------------------------

// Weights are the percentage shares of the four components. They sum to 100.
type Weights struct {
	DataPoints         int `json:"data_points" yaml:"data_points"`
	CreditRatios       int `json:"credit_ratios" yaml:"credit_ratios"`
	BorrowerAttributes int `json:"borrower_attributes" yaml:"borrower_attributes"`
	Psychometric       int `json:"psychometric" yaml:"psychometric"`
}

// DefaultWeights returns the 30/20/48/2 split.
func DefaultWeights() Weights {
	return Weights{DataPoints: 30, CreditRatios: 20, BorrowerAttributes: 48, Psychometric: 2}
}

// Sum returns the total of the four weights.
func (w Weights) Sum() int {
	return w.DataPoints + w.CreditRatios + w.BorrowerAttributes + w.Psychometric
}

// Validate checks that no weight is negative and that they sum to 100.
func (w Weights) Validate() error {
	if w.DataPoints < 0 || w.CreditRatios < 0 || w.BorrowerAttributes < 0 || w.Psychometric < 0 {
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidWeights)
	}
	if sum := w.Sum(); sum != 100 {
		return fmt.Errorf("%w: weights sum to %d, want 100", ErrInvalidWeights, sum)
	}
	return nil
}

// ---------------------------------------------------------------------------
// GradeThresholds – minimum final score per grade
// ---------------------------------------------------------------------------

// GradeThresholds are the minimum final scores for grades A, B and C. R is
// the floor below C.
type GradeThresholds struct {
	A decimal.Decimal `json:"A" yaml:"A"`
	B decimal.Decimal `json:"B" yaml:"B"`
	C decimal.Decimal `json:"C" yaml:"C"`
	R decimal.Decimal `json:"R" yaml:"R"`
}

// DefaultGradeThresholds returns 65/51/35/0.
func DefaultGradeThresholds() GradeThresholds {
	return GradeThresholds{
		A: decimal.NewFromInt(65),
		B: decimal.NewFromInt(51),
		C: decimal.NewFromInt(35),
		R: decimal.Zero,
	}
}

// Validate checks A > B > C > R >= 0.
func (t GradeThresholds) Validate() error {
	if t.R.IsNegative() {
		return fmt.Errorf("%w: R threshold %s is negative", ErrInvalidThresholds, t.R)
	}
	if !t.A.GreaterThan(t.B) || !t.B.GreaterThan(t.C) || !t.C.GreaterThan(t.R) {
		return fmt.Errorf("%w: thresholds must be strictly descending, got A=%s B=%s C=%s R=%s",
			ErrInvalidThresholds, t.A, t.B, t.C, t.R)
	}
	if t.A.GreaterThan(hundred) {
		return fmt.Errorf("%w: A threshold %s exceeds 100", ErrInvalidThresholds, t.A)
	}
	return nil
}

// GradeFor bands a final score. Higher scores never yield a lower grade.
func (t GradeThresholds) GradeFor(score decimal.Decimal) valueobject.Grade {
	switch {
	case score.GreaterThanOrEqual(t.A):
		return valueobject.GradeA
	case score.GreaterThanOrEqual(t.B):
		return valueobject.GradeB
	case score.GreaterThanOrEqual(t.C):
		return valueobject.GradeC
	default:
		return valueobject.GradeR
	}
}

// ---------------------------------------------------------------------------
// ScoringPolicy – immutable weights + thresholds snapshot
// ---------------------------------------------------------------------------

// ScoringPolicy is the configuration captured by one scoring run. It is a
// value; replacing the active policy never affects a run already started.
type ScoringPolicy struct {
	Weights    Weights         `json:"weights" yaml:"weights"`
	Thresholds GradeThresholds `json:"grade_thresholds" yaml:"grade_thresholds"`
}

// DefaultScoringPolicy returns the default weights and thresholds.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{Weights: DefaultWeights(), Thresholds: DefaultGradeThresholds()}
}

// NewScoringPolicy validates and returns a policy.
func NewScoringPolicy(w Weights, t GradeThresholds) (ScoringPolicy, error) {
	p := ScoringPolicy{Weights: w, Thresholds: t}
	if err := p.Validate(); err != nil {
		return ScoringPolicy{}, err
	}
	return p, nil
}

// Validate checks both the weights and the thresholds.
func (p ScoringPolicy) Validate() error {
	if err := p.Weights.Validate(); err != nil {
		return err
	}
	return p.Thresholds.Validate()
}
