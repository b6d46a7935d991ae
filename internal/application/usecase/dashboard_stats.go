package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

const topRedFlagLimit = 10

// DashboardStatsUseCase aggregates stored scores for the portfolio dashboard.
type DashboardStatsUseCase struct {
	scores port.ScoreRepository
}

// NewDashboardStatsUseCase wires dependencies.
func NewDashboardStatsUseCase(scores port.ScoreRepository) *DashboardStatsUseCase {
	return &DashboardStatsUseCase{scores: scores}
}

// Execute loads the scores in range and summarises them.
func (uc *DashboardStatsUseCase) Execute(ctx context.Context, req dto.DashboardStatsRequest) (dto.DashboardStats, error) {
	scores, err := uc.scores.List(ctx, port.ScoreQuery{Since: req.Since, Until: req.Until})
	if err != nil {
		return dto.DashboardStats{}, fmt.Errorf("list scores: %w", err)
	}
	return Summarize(scores), nil
}

// Summarize computes dashboard statistics over scores. Approval counts
// grades A, B and C; averages and rates are rounded to 2 places.
func Summarize(scores []model.CreditScore) dto.DashboardStats {
	stats := dto.DashboardStats{
		TotalScores:       len(scores),
		AverageScore:      decimal.Zero,
		ApprovalRate:      decimal.Zero,
		GradeDistribution: map[string]int{},
		RiskDistribution:  map[string]int{},
		TopRedFlags:       []dto.RedFlagStat{},
		MonthlyTrend:      []dto.MonthlyTrend{},
	}
	for _, g := range valueobject.AllGrades() {
		stats.GradeDistribution[g.String()] = 0
	}
	for _, r := range valueobject.AllRiskTiers() {
		stats.RiskDistribution[r.String()] = 0
	}
	if len(scores) == 0 {
		return stats
	}

	var (
		total    = decimal.Zero
		approved int
		flags    = map[string]*dto.RedFlagStat{}
		months   = map[string]*monthAccumulator{}
	)
	for _, s := range scores {
		r := s.Result()
		total = total.Add(r.FinalScore)
		stats.GradeDistribution[r.Grade.String()]++
		stats.RiskDistribution[r.RiskTier.String()]++
		if r.Grade.IsApproved() {
			approved++
		}

		for _, f := range r.RedFlags {
			st, ok := flags[f.Name]
			if !ok {
				st = &dto.RedFlagStat{Name: f.Name, Type: f.Type.String(), Severity: f.Severity.String()}
				flags[f.Name] = st
			}
			st.Count++
		}

		key := s.CalculatedAt().UTC().Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &monthAccumulator{total: decimal.Zero}
			months[key] = m
		}
		m.add(r)
	}

	n := decimal.NewFromInt(int64(len(scores)))
	stats.AverageScore = total.Div(n).Round(2)
	stats.ApprovalRate = rate(approved, len(scores))
	stats.TopRedFlags = topFlags(flags, n)
	stats.MonthlyTrend = trend(months)
	return stats
}

type monthAccumulator struct {
	total    decimal.Decimal
	count    int
	approved int
}

func (m *monthAccumulator) add(r model.ScoreResult) {
	m.total = m.total.Add(r.FinalScore)
	m.count++
	if r.Grade.IsApproved() {
		m.approved++
	}
}

func rate(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).Round(2)
}

// topFlags orders flags by count, then name, and keeps the first ten.
func topFlags(flags map[string]*dto.RedFlagStat, total decimal.Decimal) []dto.RedFlagStat {
	out := make([]dto.RedFlagStat, 0, len(flags))
	for _, f := range flags {
		f.Percentage = decimal.NewFromInt(int64(f.Count)).Mul(decimal.NewFromInt(100)).Div(total).Round(2)
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topRedFlagLimit {
		out = out[:topRedFlagLimit]
	}
	return out
}

func trend(months map[string]*monthAccumulator) []dto.MonthlyTrend {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]dto.MonthlyTrend, 0, len(keys))
	for _, k := range keys {
		m := months[k]
		out = append(out, dto.MonthlyTrend{
			Month:        k,
			AverageScore: m.total.Div(decimal.NewFromInt(int64(m.count))).Round(2),
			Count:        m.count,
			ApprovalRate: rate(m.approved, m.count),
		})
	}
	return out
}
