package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
)

// Behavioural dimensions, one question each.
const (
	DimensionTimeDiscipline        = "time_discipline"
	DimensionImpulsePlanning       = "impulse_planning"
	DimensionHonestyResponsibility = "honesty_responsibility"
	DimensionResilience            = "resilience"
	DimensionFutureOrientation     = "future_orientation"
)

const (
	// NeutralPsychometricScore substitutes for the psychometric total when
	// no responses are supplied.
	NeutralPsychometricScore = 60

	maxDimensionScore   = 20
	outOfRangeScore     = 10
	defaultTestDuration = 12
)

type option struct {
	text  string
	score int
}

type question struct {
	id        string
	dimension string
	label     string
	text      string
	options   []option
}

func (q question) maxScore() int {
	best := 0
	for _, o := range q.options {
		if o.score > best {
			best = o.score
		}
	}
	return best
}

// questionBank is ordered by dimension; the order is part of the
// questionnaire presented to respondents.
var questionBank = []question{
	{
		id:        "td_1",
		dimension: DimensionTimeDiscipline,
		label:     "Time Discipline",
		text:      "How often do you arrive on time for meetings or appointments?",
		options: []option{
			{"Always on time or early", 20},
			{"Usually on time (within 5 minutes)", 15},
			{"Sometimes late (5-15 minutes)", 10},
			{"Often late (15+ minutes)", 5},
			{"Rarely on time", 0},
		},
	},
	{
		id:        "ip_1",
		dimension: DimensionImpulsePlanning,
		label:     "Impulse Control & Planning",
		text:      "If you received an unexpected 50,000 BDT, what would you most likely do?",
		options: []option{
			{"Save it for future business needs", 20},
			{"Invest in business expansion", 18},
			{"Pay off existing debts", 16},
			{"Buy something I've wanted for a while", 8},
			{"Spend it on immediate family needs", 12},
			{"Spend it quickly on things I want", 2},
		},
	},
	{
		id:        "hr_1",
		dimension: DimensionHonestyResponsibility,
		label:     "Honesty & Responsibility",
		text:      "If you accidentally damaged something you borrowed from a friend, what would you do?",
		options: []option{
			{"Immediately tell them and offer to replace it", 20},
			{"Tell them and ask how to make it right", 18},
			{"Tell them but explain why it wasn't entirely my fault", 12},
			{"Return it and hope they don't notice", 5},
			{"Avoid the situation and not return it immediately", 0},
		},
	},
	{
		id:        "r_1",
		dimension: DimensionResilience,
		label:     "Resilience",
		text:      "When facing an unexpected large expense (like medical emergency), how do you typically handle it?",
		options: []option{
			{"Use emergency savings I've set aside", 20},
			{"Temporarily reduce other expenses to manage", 18},
			{"Borrow from family or friends", 12},
			{"Take a loan or use credit", 8},
			{"Panic and don't know what to do", 2},
		},
	},
	{
		id:        "fo_1",
		dimension: DimensionFutureOrientation,
		label:     "Future Orientation",
		text:      "What is your primary goal for your business in the next 6 months?",
		options: []option{
			{"Expand to new locations or products", 20},
			{"Increase sales by a specific percentage", 18},
			{"Improve business processes and efficiency", 16},
			{"Maintain current operations steadily", 12},
			{"Just survive day-to-day challenges", 5},
			{"I don't think much about the future", 0},
		},
	},
}

// RequiredQuestionIDs lists the question ids a complete response set covers.
func RequiredQuestionIDs() []string {
	ids := make([]string, len(questionBank))
	for i, q := range questionBank {
		ids[i] = q.id
	}
	return ids
}

// PsychometricModel scores the behavioural questionnaire.
type PsychometricModel struct {
	now func() time.Time
}

// NewPsychometricModel creates a PsychometricModel. now supplies the end
// time when a response set carries none; nil means time.Now.
func NewPsychometricModel(now func() time.Time) *PsychometricModel {
	if now == nil {
		now = time.Now
	}
	return &PsychometricModel{now: now}
}

// Questions returns the respondent-facing question list. Option scores are
// not exposed.
func (m *PsychometricModel) Questions() []model.PsychometricQuestion {
	out := make([]model.PsychometricQuestion, 0, len(questionBank))
	for _, q := range questionBank {
		opts := make([]model.PsychometricOption, len(q.options))
		for i, o := range q.options {
			opts[i] = model.PsychometricOption{ID: i, Text: o.text}
		}
		out = append(out, model.PsychometricQuestion{
			ID:        q.id,
			Dimension: q.dimension,
			Question:  q.text,
			Options:   opts,
			MaxScore:  q.maxScore(),
		})
	}
	return out
}

// Analyze scores a response set without validating it first: a skipped
// question counts as option 0 and an unknown option index scores 10.
func (m *PsychometricModel) Analyze(r model.PsychometricResponses) model.PsychometricResult {
	scores := make(map[string]int, len(questionBank))
	for _, q := range questionBank {
		scores[q.dimension] = m.questionScore(q, r)
	}

	res := model.PsychometricResult{
		TimeDiscipline:        scores[DimensionTimeDiscipline],
		ImpulsePlanning:       scores[DimensionImpulsePlanning],
		HonestyResponsibility: scores[DimensionHonestyResponsibility],
		Resilience:            scores[DimensionResilience],
		FutureOrientation:     scores[DimensionFutureOrientation],
		TestDurationMinutes:   m.duration(r),
		Responses:             r,
	}
	res.Total = res.TimeDiscipline + res.ImpulsePlanning + res.HonestyResponsibility +
		res.Resilience + res.FutureOrientation
	res.Adjustment = AdjustmentForTotal(res.Total)
	res.Profile = behavioralProfile(res)
	return res
}

func (m *PsychometricModel) questionScore(q question, r model.PsychometricResponses) int {
	selected, _ := r.Option(q.id)
	if selected < 0 || selected >= len(q.options) {
		return outOfRangeScore
	}
	return minInt(maxDimensionScore, q.options[selected].score)
}

// duration is the test length in minutes rounded to two places. Without a
// start time the nominal duration applies.
func (m *PsychometricModel) duration(r model.PsychometricResponses) decimal.Decimal {
	if r.StartTime == nil {
		return decimal.NewFromInt(defaultTestDuration)
	}
	end := m.now()
	if r.EndTime != nil {
		end = *r.EndTime
	}
	seconds := decimal.NewFromFloat(end.Sub(*r.StartTime).Seconds())
	return seconds.Div(decimal.NewFromInt(60)).Round(2)
}

// AdjustmentForTotal maps a psychometric total to its adjustment band:
// >=90 +5, 80-89 +2, 60-79 0, 40-59 -2, otherwise -5.
func AdjustmentForTotal(total int) int {
	switch {
	case total >= 90:
		return 5
	case total >= 80:
		return 2
	case total >= 60:
		return 0
	case total >= 40:
		return -2
	default:
		return -5
	}
}

// Validate checks that every required question is answered with a selected
// option. Timing outliers are reported as warnings.
func (m *PsychometricModel) Validate(r model.PsychometricResponses) model.PsychometricValidation {
	v := model.PsychometricValidation{Valid: true, Errors: []string{}, Warnings: []string{}}

	for _, q := range questionBank {
		if !r.Has(q.id) {
			v.Valid = false
			v.Errors = append(v.Errors, "Missing response for question: "+q.id)
		}
	}
	for _, q := range questionBank {
		if !r.Has(q.id) {
			continue
		}
		if _, ok := r.Option(q.id); !ok {
			v.Valid = false
			v.Errors = append(v.Errors, "Invalid response format for question: "+q.id)
		}
	}

	if r.StartTime != nil && r.EndTime != nil {
		minutes := r.EndTime.Sub(*r.StartTime).Minutes()
		switch {
		case minutes < 2:
			v.Warnings = append(v.Warnings, "Test completed very quickly - responses may be rushed")
		case minutes > 30:
			v.Warnings = append(v.Warnings, "Test took unusually long - may affect reliability")
		}
	}
	return v
}

func behavioralProfile(res model.PsychometricResult) model.BehavioralProfile {
	p := model.BehavioralProfile{
		Strengths:      []string{},
		Concerns:       []string{},
		RiskIndicators: []string{},
	}

	dims := []int{
		res.TimeDiscipline,
		res.ImpulsePlanning,
		res.HonestyResponsibility,
		res.Resilience,
		res.FutureOrientation,
	}
	for i, score := range dims {
		label := strings.ToLower(questionBank[i].label)
		switch {
		case score >= 16:
			p.Strengths = append(p.Strengths, "Strong "+label)
		case score <= 8:
			p.Concerns = append(p.Concerns, "Weak "+label)
			p.RiskIndicators = append(p.RiskIndicators, fmt.Sprintf("Low %s score: %d/20", label, score))
		}
	}

	switch {
	case res.Total >= 90:
		p.Recommendation = "Excellent behavioral profile - suitable for premium terms"
	case res.Total >= 80:
		p.Recommendation = "Good behavioral traits - standard monitoring sufficient"
	case res.Total >= 60:
		p.Recommendation = "Average behavioral profile - regular monitoring recommended"
	case res.Total >= 40:
		p.Recommendation = "Some behavioral concerns - enhanced monitoring and support needed"
	default:
		p.Recommendation = "Significant behavioral risks - consider rejection or very close monitoring"
	}

	switch {
	case res.TestDurationMinutes.LessThan(decimal.NewFromInt(5)):
		p.RiskIndicators = append(p.RiskIndicators, "Test completed too quickly - may indicate rushed responses")
	case res.TestDurationMinutes.GreaterThan(decimal.NewFromInt(20)):
		p.RiskIndicators = append(p.RiskIndicators, "Test took unusually long - may indicate difficulty or confusion")
	}
	return p
}
