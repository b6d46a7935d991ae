package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// RiskTier – immutable value object
// ---------------------------------------------------------------------------

// RiskTier is the credit risk classification attached to a score.
type RiskTier struct {
	value string
}

const (
	riskTierLow      = "low"
	riskTierMedium   = "medium"
	riskTierHigh     = "high"
	riskTierVeryHigh = "very_high"
)

var (
	RiskTierLow      = RiskTier{value: riskTierLow}
	RiskTierMedium   = RiskTier{value: riskTierMedium}
	RiskTierHigh     = RiskTier{value: riskTierHigh}
	RiskTierVeryHigh = RiskTier{value: riskTierVeryHigh}
)

var validRiskTiers = map[string]RiskTier{
	riskTierLow:      RiskTierLow,
	riskTierMedium:   RiskTierMedium,
	riskTierHigh:     RiskTierHigh,
	riskTierVeryHigh: RiskTierVeryHigh,
}

// AllRiskTiers lists every tier from least to most risky.
func AllRiskTiers() []RiskTier {
	return []RiskTier{RiskTierLow, RiskTierMedium, RiskTierHigh, RiskTierVeryHigh}
}

// NewRiskTier creates a RiskTier from a raw string.
func NewRiskTier(s string) (RiskTier, error) {
	v, ok := validRiskTiers[s]
	if !ok {
		return RiskTier{}, fmt.Errorf("invalid risk tier: %q", s)
	}
	return v, nil
}

var (
	scoreLowRisk    = decimal.NewFromInt(75)
	scoreMediumRisk = decimal.NewFromInt(60)
	scoreHighRisk   = decimal.NewFromInt(40)
)

// RiskTierFromScore maps a final score to its base tier and base default
// probability: >=75 low/0.05, >=60 medium/0.15, >=40 high/0.30, else
// very_high/0.50.
func RiskTierFromScore(score decimal.Decimal) (RiskTier, decimal.Decimal) {
	switch {
	case score.GreaterThanOrEqual(scoreLowRisk):
		return RiskTierLow, decimal.RequireFromString("0.05")
	case score.GreaterThanOrEqual(scoreMediumRisk):
		return RiskTierMedium, decimal.RequireFromString("0.15")
	case score.GreaterThanOrEqual(scoreHighRisk):
		return RiskTierHigh, decimal.RequireFromString("0.30")
	default:
		return RiskTierVeryHigh, decimal.RequireFromString("0.50")
	}
}

// RiskTierFromProbability classifies an externally predicted default
// probability: <0.05 low, <0.15 medium, <0.35 high, else very_high.
func RiskTierFromProbability(p float64) RiskTier {
	switch {
	case p < 0.05:
		return RiskTierLow
	case p < 0.15:
		return RiskTierMedium
	case p < 0.35:
		return RiskTierHigh
	default:
		return RiskTierVeryHigh
	}
}

// String returns the string representation of the risk tier.
func (r RiskTier) String() string { return r.value }

// IsZero returns true if the risk tier has not been initialised.
func (r RiskTier) IsZero() bool { return r.value == "" }

// Equal returns true when both tiers carry the same value.
func (r RiskTier) Equal(other RiskTier) bool { return r.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (r RiskTier) MarshalText() ([]byte, error) { return []byte(r.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskTier) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = RiskTier{}
		return nil
	}
	v, err := NewRiskTier(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
