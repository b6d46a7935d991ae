package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/application/usecase"
	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

var (
	weakGuarantor = model.RedFlag{Type: valueobject.FlagTypeSoft, Name: "Weak Guarantor", Severity: valueobject.SeverityMedium}
	newBusiness   = model.RedFlag{Type: valueobject.FlagTypeSoft, Name: "New Business", Severity: valueobject.SeverityMedium}
	activeDefault = model.RedFlag{Type: valueobject.FlagTypeHard, Name: "Active Default", Severity: valueobject.SeverityCritical}
)

func TestSummarize_Empty(t *testing.T) {
	stats := usecase.Summarize(nil)

	assert.Zero(t, stats.TotalScores)
	assert.True(t, stats.AverageScore.IsZero())
	assert.True(t, stats.ApprovalRate.IsZero())
	assert.Equal(t, map[string]int{"A": 0, "B": 0, "C": 0, "R": 0}, stats.GradeDistribution)
	assert.Len(t, stats.RiskDistribution, 4)
	assert.Empty(t, stats.TopRedFlags)
	assert.Empty(t, stats.MonthlyTrend)
}

func TestSummarize(t *testing.T) {
	may := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	june := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	scores := []model.CreditScore{
		storedScore("APP-1", "70", valueobject.GradeA, valueobject.RiskTierLow, may),
		storedScore("APP-2", "55", valueobject.GradeB, valueobject.RiskTierMedium, may, weakGuarantor),
		storedScore("APP-3", "40", valueobject.GradeC, valueobject.RiskTierHigh, june, weakGuarantor, newBusiness),
		storedScore("APP-4", "20", valueobject.GradeR, valueobject.RiskTierVeryHigh, june, activeDefault, weakGuarantor),
	}

	stats := usecase.Summarize(scores)

	assert.Equal(t, 4, stats.TotalScores)
	assert.Equal(t, "46.25", stats.AverageScore.StringFixed(2))
	assert.Equal(t, "75.00", stats.ApprovalRate.StringFixed(2))
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1, "R": 1}, stats.GradeDistribution)
	assert.Equal(t, 1, stats.RiskDistribution[valueobject.RiskTierVeryHigh.String()])

	require.Len(t, stats.TopRedFlags, 3)
	assert.Equal(t, "Weak Guarantor", stats.TopRedFlags[0].Name)
	assert.Equal(t, 3, stats.TopRedFlags[0].Count)
	assert.Equal(t, "75.00", stats.TopRedFlags[0].Percentage.StringFixed(2))
	assert.Equal(t, "soft", stats.TopRedFlags[0].Type)
	// ties break by name
	assert.Equal(t, "Active Default", stats.TopRedFlags[1].Name)
	assert.Equal(t, "New Business", stats.TopRedFlags[2].Name)

	require.Len(t, stats.MonthlyTrend, 2)
	assert.Equal(t, dto.MonthlyTrend{
		Month:        "2025-05",
		AverageScore: stats.MonthlyTrend[0].AverageScore,
		Count:        2,
		ApprovalRate: stats.MonthlyTrend[0].ApprovalRate,
	}, stats.MonthlyTrend[0])
	assert.Equal(t, "62.50", stats.MonthlyTrend[0].AverageScore.StringFixed(2))
	assert.Equal(t, "100.00", stats.MonthlyTrend[0].ApprovalRate.StringFixed(2))
	assert.Equal(t, "2025-06", stats.MonthlyTrend[1].Month)
	assert.Equal(t, "50.00", stats.MonthlyTrend[1].ApprovalRate.StringFixed(2))
}

func TestSummarize_CapsTopFlags(t *testing.T) {
	var flags []model.RedFlag
	for _, name := range []string{"F01", "F02", "F03", "F04", "F05", "F06", "F07", "F08", "F09", "F10", "F11", "F12"} {
		flags = append(flags, model.RedFlag{Type: valueobject.FlagTypeSoft, Name: name, Severity: valueobject.SeverityLow})
	}
	stats := usecase.Summarize([]model.CreditScore{
		storedScore("APP-1", "30", valueobject.GradeR, valueobject.RiskTierHigh, testNow, flags...),
	})

	require.Len(t, stats.TopRedFlags, 10)
	assert.Equal(t, "F01", stats.TopRedFlags[0].Name)
	assert.Equal(t, "F10", stats.TopRedFlags[9].Name)
}

func TestDashboardStatsUseCase(t *testing.T) {
	repo := newMockScoreRepository(
		storedScore("APP-1", "66", valueobject.GradeA, valueobject.RiskTierLow, testNow),
	)
	uc := usecase.NewDashboardStatsUseCase(repo)

	stats, err := uc.Execute(context.Background(), dto.DashboardStatsRequest{})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalScores)
	assert.Equal(t, "100.00", stats.ApprovalRate.StringFixed(2))
}
