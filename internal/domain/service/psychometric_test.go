package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/service"
)

func fixedClock() time.Time { return testNow.Add(15 * time.Minute) }

func TestPsychometric_Analyze(t *testing.T) {
	m := service.NewPsychometricModel(fixedClock)

	res := m.Analyze(goodResponses())

	assert.Equal(t, 15, res.TimeDiscipline)
	assert.Equal(t, 20, res.ImpulsePlanning)
	assert.Equal(t, 18, res.HonestyResponsibility)
	assert.Equal(t, 20, res.Resilience)
	assert.Equal(t, 12, res.FutureOrientation)
	assert.Equal(t, 85, res.Total)
	assert.Equal(t, 2, res.Adjustment)
	assert.Equal(t, "10", res.TestDurationMinutes.String())

	assert.Equal(t, []string{
		"Strong impulse control & planning",
		"Strong honesty & responsibility",
		"Strong resilience",
	}, res.Profile.Strengths)
	assert.Empty(t, res.Profile.Concerns)
	assert.Empty(t, res.Profile.RiskIndicators)
	assert.Equal(t, "Good behavioral traits - standard monitoring sufficient", res.Profile.Recommendation)
}

func TestPsychometric_AnalyzeLenientDefaults(t *testing.T) {
	m := service.NewPsychometricModel(fixedClock)

	r := responses(map[string]int{"ip_1": 9, "hr_1": -1, "r_1": 4, "fo_1": 5}, nil, nil)
	r.Answers["td_1"] = model.PsychometricAnswer{}

	res := m.Analyze(r)

	assert.Equal(t, 20, res.TimeDiscipline, "skipped question counts as option 0")
	assert.Equal(t, 10, res.ImpulsePlanning, "unknown option scores 10")
	assert.Equal(t, 10, res.HonestyResponsibility, "negative option scores 10")
	assert.Equal(t, 2, res.Resilience)
	assert.Equal(t, 0, res.FutureOrientation)
	assert.Equal(t, 42, res.Total)
	assert.Equal(t, -2, res.Adjustment)
	assert.Equal(t, "12", res.TestDurationMinutes.String(), "missing start uses the nominal duration")

	assert.Equal(t, []string{"Weak resilience", "Weak future orientation"}, res.Profile.Concerns)
	assert.Contains(t, res.Profile.RiskIndicators, "Low future orientation score: 0/20")
	assert.Equal(t, "Some behavioral concerns - enhanced monitoring and support needed", res.Profile.Recommendation)
}

func TestPsychometric_DurationUsesClockWhenEndMissing(t *testing.T) {
	m := service.NewPsychometricModel(fixedClock)

	r := goodResponses()
	r.EndTime = nil

	res := m.Analyze(r)
	assert.Equal(t, "15", res.TestDurationMinutes.String())
}

func TestPsychometric_DurationRiskIndicators(t *testing.T) {
	tests := []struct {
		name    string
		minutes time.Duration
		want    string
	}{
		{"rushed", 3 * time.Minute, "Test completed too quickly - may indicate rushed responses"},
		{"slow", 25 * time.Minute, "Test took unusually long - may indicate difficulty or confusion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := goodResponses()
			r.EndTime = timePtr(testNow.Add(tt.minutes))

			res := service.NewPsychometricModel(fixedClock).Analyze(r)
			assert.Contains(t, res.Profile.RiskIndicators, tt.want)
		})
	}
}

func TestAdjustmentForTotal(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{100, 5}, {90, 5}, {89, 2}, {85, 2}, {80, 2}, {79, 0}, {60, 0},
		{59, -2}, {40, -2}, {39, -5}, {0, -5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, service.AdjustmentForTotal(tt.total), "total %d", tt.total)
	}
}

func TestPsychometric_Validate(t *testing.T) {
	m := service.NewPsychometricModel(fixedClock)

	t.Run("complete set is valid", func(t *testing.T) {
		v := m.Validate(goodResponses())
		assert.True(t, v.Valid)
		assert.Empty(t, v.Errors)
		assert.Empty(t, v.Warnings)
	})

	t.Run("missing and malformed answers", func(t *testing.T) {
		r := responses(map[string]int{"ip_1": 0, "hr_1": 0, "r_1": 0}, nil, nil)
		r.Answers["td_1"] = model.PsychometricAnswer{}

		v := m.Validate(r)
		assert.False(t, v.Valid)
		assert.Equal(t, []string{
			"Missing response for question: fo_1",
			"Invalid response format for question: td_1",
		}, v.Errors)
	})

	t.Run("timing warnings need both timestamps", func(t *testing.T) {
		r := goodResponses()
		r.EndTime = timePtr(testNow.Add(time.Minute))
		v := m.Validate(r)
		assert.True(t, v.Valid)
		assert.Equal(t, []string{"Test completed very quickly - responses may be rushed"}, v.Warnings)

		r.EndTime = timePtr(testNow.Add(45 * time.Minute))
		v = m.Validate(r)
		assert.Equal(t, []string{"Test took unusually long - may affect reliability"}, v.Warnings)

		r.EndTime = nil
		v = m.Validate(r)
		assert.Empty(t, v.Warnings)
	})
}

func TestPsychometric_Questions(t *testing.T) {
	qs := service.NewPsychometricModel(nil).Questions()

	require.Len(t, qs, 5)
	assert.Equal(t, service.RequiredQuestionIDs(), []string{"td_1", "ip_1", "hr_1", "r_1", "fo_1"})

	ip := qs[1]
	assert.Equal(t, "ip_1", ip.ID)
	assert.Equal(t, service.DimensionImpulsePlanning, ip.Dimension)
	assert.Len(t, ip.Options, 6)
	assert.Equal(t, 4, ip.Options[4].ID)
	assert.Equal(t, "Spend it on immediate family needs", ip.Options[4].Text)
	assert.Equal(t, 20, ip.MaxScore)
}
