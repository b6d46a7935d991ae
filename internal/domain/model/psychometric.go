package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PsychometricAnswer is the answer to one question. A nil SelectedOption
// means the respondent skipped the question.
type PsychometricAnswer struct {
	SelectedOption *int `json:"selected_option,omitempty"`
}

// PsychometricResponses is a questionnaire response set. On the wire it is a
// flat object keyed by question id plus optional start_time and end_time.
type PsychometricResponses struct {
	Answers   map[string]PsychometricAnswer
	StartTime *time.Time
	EndTime   *time.Time
}

// Option returns the selected option for a question.
func (r PsychometricResponses) Option(questionID string) (int, bool) {
	a, ok := r.Answers[questionID]
	if !ok || a.SelectedOption == nil {
		return 0, false
	}
	return *a.SelectedOption, true
}

// Has reports whether the question id is present in the response set.
func (r PsychometricResponses) Has(questionID string) bool {
	_, ok := r.Answers[questionID]
	return ok
}

// QuestionIDs returns the answered question ids in sorted order.
func (r PsychometricResponses) QuestionIDs() []string {
	ids := make([]string, 0, len(r.Answers))
	for id := range r.Answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

const (
	keyStartTime = "start_time"
	keyEndTime   = "end_time"
)

// MarshalJSON writes the flat wire form.
func (r PsychometricResponses) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Answers)+2)
	for id, a := range r.Answers {
		out[id] = a
	}
	if r.StartTime != nil {
		out[keyStartTime] = r.StartTime.UTC().Format(time.RFC3339)
	}
	if r.EndTime != nil {
		out[keyEndTime] = r.EndTime.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat wire form. Answers that are not objects are
// kept with a nil selection so that validation can report them.
func (r *PsychometricResponses) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	res := PsychometricResponses{Answers: make(map[string]PsychometricAnswer, len(raw))}
	for key, val := range raw {
		switch key {
		case keyStartTime, keyEndTime:
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if s == "" {
				continue
			}
			t, err := parseTimestamp(s)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if key == keyStartTime {
				res.StartTime = &t
			} else {
				res.EndTime = &t
			}
		default:
			var a PsychometricAnswer
			if err := json.Unmarshal(val, &a); err != nil {
				a = PsychometricAnswer{}
			}
			res.Answers[key] = a
		}
	}
	*r = res
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp accepts RFC 3339 and zone-less ISO 8601 timestamps. Zone-less
// values are read as UTC.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// BehavioralProfile is the narrative derived from a psychometric result.
type BehavioralProfile struct {
	Strengths      []string `json:"strengths"`
	Concerns       []string `json:"concerns"`
	RiskIndicators []string `json:"risk_indicators"`
	Recommendation string   `json:"recommendation"`
}

// PsychometricResult holds the five dimension scores (0-20 each), their
// total and the adjustment band in [-5, +5].
type PsychometricResult struct {
	TimeDiscipline        int                   `json:"time_discipline_score"`
	ImpulsePlanning       int                   `json:"impulse_planning_score"`
	HonestyResponsibility int                   `json:"honesty_responsibility_score"`
	Resilience            int                   `json:"resilience_score"`
	FutureOrientation     int                   `json:"future_orientation_score"`
	Total                 int                   `json:"total_score"`
	Adjustment            int                   `json:"adjustment_points"`
	TestDurationMinutes   decimal.Decimal       `json:"test_duration_minutes"`
	Responses             PsychometricResponses `json:"question_responses"`
	Profile               BehavioralProfile     `json:"behavioral_profile"`
}

// PsychometricValidation reports problems with a response set. Warnings do
// not make the set invalid.
type PsychometricValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// PsychometricOption is one answer choice shown to a respondent.
type PsychometricOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// PsychometricQuestion is the respondent-facing view of a question; option
// scores are not exposed.
type PsychometricQuestion struct {
	ID        string               `json:"id"`
	Dimension string               `json:"dimension"`
	Question  string               `json:"question"`
	Options   []PsychometricOption `json:"options"`
	MaxScore  int                  `json:"max_score"`
}
