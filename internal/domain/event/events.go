package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	AggregateApplication = "CreditApplication"
	AggregateCreditScore = "CreditScore"

	TypeApplicationSubmitted     = "application.submitted"
	TypeApplicationStatusChanged = "application.status_changed"
	TypeCreditScoreCalculated    = "credit_score.calculated"
)

// ---------------------------------------------------------------------------
// Application Events
// ---------------------------------------------------------------------------

// ApplicationSubmitted is raised when a new application enters the system.
type ApplicationSubmitted struct {
	events.BaseEvent
	SubmittedBy         string          `json:"submitted_by"`
	BusinessType        string          `json:"business_type"`
	LoanAmountRequested decimal.Decimal `json:"loan_amount_requested"`
}

func NewApplicationSubmitted(
	applicationID, submittedBy, businessType string,
	amount decimal.Decimal, now time.Time,
) ApplicationSubmitted {
	return ApplicationSubmitted{
		BaseEvent:           events.NewBaseEvent(TypeApplicationSubmitted, applicationID, AggregateApplication, now),
		SubmittedBy:         submittedBy,
		BusinessType:        businessType,
		LoanAmountRequested: amount,
	}
}

// ApplicationStatusChanged is raised on every lifecycle transition.
type ApplicationStatusChanged struct {
	events.BaseEvent
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

func NewApplicationStatusChanged(applicationID, from, to, reason string, now time.Time) ApplicationStatusChanged {
	return ApplicationStatusChanged{
		BaseEvent: events.NewBaseEvent(TypeApplicationStatusChanged, applicationID, AggregateApplication, now),
		From:      from,
		To:        to,
		Reason:    reason,
	}
}

// ---------------------------------------------------------------------------
// Credit Score Events
// ---------------------------------------------------------------------------

// CreditScoreCalculated is raised when a new score has been produced for an
// application. The aggregate ID is the score ID.
type CreditScoreCalculated struct {
	events.BaseEvent
	ApplicationID      string          `json:"application_id"`
	FinalScore         decimal.Decimal `json:"final_score"`
	Grade              string          `json:"grade"`
	RiskTier           string          `json:"risk_tier"`
	DefaultProbability decimal.Decimal `json:"default_probability"`
	MaxLoanAmount      decimal.Decimal `json:"max_loan_amount"`
	HardFlags          int             `json:"hard_flags"`
	SoftFlags          int             `json:"soft_flags"`
}

func NewCreditScoreCalculated(
	scoreID, applicationID string,
	finalScore decimal.Decimal, grade, riskTier string,
	defaultProbability, maxLoan decimal.Decimal,
	hardFlags, softFlags int,
	now time.Time,
) CreditScoreCalculated {
	return CreditScoreCalculated{
		BaseEvent:          events.NewBaseEvent(TypeCreditScoreCalculated, scoreID, AggregateCreditScore, now),
		ApplicationID:      applicationID,
		FinalScore:         finalScore,
		Grade:              grade,
		RiskTier:           riskTier,
		DefaultProbability: defaultProbability,
		MaxLoanAmount:      maxLoan,
		HardFlags:          hardFlags,
		SoftFlags:          softFlags,
	}
}
