package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
)

const meterName = "github.com/AlifSrSE/css/scoring"

var _ port.ScoringRecorder = (*Recorder)(nil)

// Recorder implements port.ScoringRecorder with OpenTelemetry instruments.
type Recorder struct {
	calculated metric.Int64Counter
	failures   metric.Int64Counter
	scores     metric.Float64Histogram
}

// NewRecorder registers the scoring instruments on provider.
func NewRecorder(provider metric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(meterName)

	calculated, err := meter.Int64Counter("credit_scores_calculated_total",
		metric.WithDescription("Credit scores calculated, by grade and risk tier."))
	if err != nil {
		return nil, fmt.Errorf("create calculated counter: %w", err)
	}
	failures, err := meter.Int64Counter("credit_scoring_failures_total",
		metric.WithDescription("Scoring runs that failed, by stage."))
	if err != nil {
		return nil, fmt.Errorf("create failure counter: %w", err)
	}
	scores, err := meter.Float64Histogram("credit_score_value",
		metric.WithDescription("Distribution of final credit scores."),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100))
	if err != nil {
		return nil, fmt.Errorf("create score histogram: %w", err)
	}

	return &Recorder{calculated: calculated, failures: failures, scores: scores}, nil
}

func (r *Recorder) RecordScore(ctx context.Context, result model.ScoreResult) {
	r.calculated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("grade", result.Grade.String()),
		attribute.String("risk", result.RiskTier.String()),
	))
	score, _ := result.FinalScore.Float64()
	r.scores.Record(ctx, score)
}

func (r *Recorder) RecordFailure(ctx context.Context, stage string) {
	r.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}
