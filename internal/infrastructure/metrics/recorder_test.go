package metrics_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
	"github.com/AlifSrSE/css/internal/infrastructure/metrics"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := metrics.NewRecorder(provider)
	require.NoError(t, err)
	ctx := context.Background()

	rec.RecordScore(ctx, model.ScoreResult{
		FinalScore: decimal.RequireFromString("76.17"),
		Grade:      valueobject.GradeA,
		RiskTier:   valueobject.RiskTierLow,
	})
	rec.RecordScore(ctx, model.ScoreResult{
		FinalScore: decimal.RequireFromString("71.50"),
		Grade:      valueobject.GradeA,
		RiskTier:   valueobject.RiskTierLow,
	})
	rec.RecordScore(ctx, model.ScoreResult{
		FinalScore: decimal.RequireFromString("12"),
		Grade:      valueobject.GradeR,
		RiskTier:   valueobject.RiskTierVeryHigh,
	})
	rec.RecordFailure(ctx, "persist")

	got := collect(t, reader)

	t.Run("calculated counter by grade and risk", func(t *testing.T) {
		sum, ok := got["credit_scores_calculated_total"].Data.(metricdata.Sum[int64])
		require.True(t, ok)
		counts := map[string]int64{}
		for _, dp := range sum.DataPoints {
			grade, _ := dp.Attributes.Value(attribute.Key("grade"))
			risk, _ := dp.Attributes.Value(attribute.Key("risk"))
			counts[grade.AsString()+"/"+risk.AsString()] = dp.Value
		}
		assert.Equal(t, map[string]int64{"A/low": 2, "R/very_high": 1}, counts)
	})

	t.Run("failure counter by stage", func(t *testing.T) {
		sum, ok := got["credit_scoring_failures_total"].Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		stage, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("stage"))
		assert.Equal(t, "persist", stage.AsString())
		assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	})

	t.Run("score histogram", func(t *testing.T) {
		hist, ok := got["credit_score_value"].Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 1)
		dp := hist.DataPoints[0]
		assert.Equal(t, uint64(3), dp.Count)
		assert.InDelta(t, 159.67, dp.Sum, 1e-9)
	})
}
