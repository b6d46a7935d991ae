package service

import "github.com/shopspring/decimal"

// step is one rung of a threshold ladder.
type step struct {
	threshold decimal.Decimal
	points    int
}

func at(threshold string, points int) step {
	return step{threshold: decimal.RequireFromString(threshold), points: points}
}

// atLeast returns the points of the first rung whose threshold v reaches.
// Rungs must be ordered from the highest threshold down.
func atLeast(v decimal.Decimal, steps ...step) int {
	for _, s := range steps {
		if v.GreaterThanOrEqual(s.threshold) {
			return s.points
		}
	}
	return 0
}

// atMost returns the points of the first rung whose threshold v does not
// exceed. Rungs must be ordered from the lowest threshold up.
func atMost(v decimal.Decimal, steps ...step) int {
	for _, s := range steps {
		if v.LessThanOrEqual(s.threshold) {
			return s.points
		}
	}
	return 0
}

var hundred = decimal.NewFromInt(100)

// percent returns num/den*100. Callers guard den > 0.
func percent(num, den decimal.Decimal) decimal.Decimal {
	return num.Div(den).Mul(hundred)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
