package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlifSrSE/css/internal/domain/service"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights service.Weights
		wantErr bool
	}{
		{"defaults", service.DefaultWeights(), false},
		{"all data points", service.Weights{DataPoints: 100}, false},
		{"sum 99", service.Weights{DataPoints: 30, CreditRatios: 20, BorrowerAttributes: 47, Psychometric: 2}, true},
		{"negative", service.Weights{DataPoints: 110, CreditRatios: -10}, true},
		{"zero", service.Weights{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, service.ErrInvalidWeights)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func thresholds(a, b, c, r int64) service.GradeThresholds {
	return service.GradeThresholds{A: d(a), B: d(b), C: d(c), R: d(r)}
}

func TestGradeThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		t       service.GradeThresholds
		wantErr bool
	}{
		{"defaults", service.DefaultGradeThresholds(), false},
		{"custom", thresholds(80, 60, 40, 10), false},
		{"equal A and B", thresholds(65, 65, 35, 0), true},
		{"ascending", thresholds(35, 51, 65, 0), true},
		{"negative floor", thresholds(65, 51, 35, -1), true},
		{"A above 100", thresholds(101, 51, 35, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.t.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, service.ErrInvalidThresholds)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGradeThresholds_GradeFor(t *testing.T) {
	th := service.DefaultGradeThresholds()

	tests := []struct {
		score string
		want  valueobject.Grade
	}{
		{"100", valueobject.GradeA},
		{"65", valueobject.GradeA},
		{"64.99", valueobject.GradeB},
		{"51", valueobject.GradeB},
		{"50.99", valueobject.GradeC},
		{"35", valueobject.GradeC},
		{"34.99", valueobject.GradeR},
		{"0", valueobject.GradeR},
	}

	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			assert.Equal(t, tt.want, th.GradeFor(decimal.RequireFromString(tt.score)))
		})
	}
}

func TestGradeThresholds_Monotonic(t *testing.T) {
	rank := map[valueobject.Grade]int{
		valueobject.GradeR: 0,
		valueobject.GradeC: 1,
		valueobject.GradeB: 2,
		valueobject.GradeA: 3,
	}

	for _, th := range []service.GradeThresholds{service.DefaultGradeThresholds(), thresholds(90, 70, 50, 20)} {
		prev := -1
		for score := decimal.Zero; score.LessThanOrEqual(d(100)); score = score.Add(decimal.RequireFromString("0.25")) {
			r := rank[th.GradeFor(score)]
			require.GreaterOrEqual(t, r, prev, "score %s", score)
			prev = r
		}
	}
}

func TestNewScoringPolicy(t *testing.T) {
	p, err := service.NewScoringPolicy(service.DefaultWeights(), service.DefaultGradeThresholds())
	require.NoError(t, err)
	assert.Equal(t, 100, p.Weights.Sum())

	_, err = service.NewScoringPolicy(service.DefaultWeights(), thresholds(50, 60, 35, 0))
	assert.ErrorIs(t, err, service.ErrInvalidThresholds)
}
