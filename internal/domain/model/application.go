package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/event"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Application sections
// ---------------------------------------------------------------------------

// BorrowerInfo describes the person applying for credit.
type BorrowerInfo struct {
	FullName           string                        `json:"full_name" yaml:"full_name"`
	Phone              string                        `json:"phone" yaml:"phone"`
	Email              string                        `json:"email,omitempty" yaml:"email,omitempty"`
	NationalID         string                        `json:"national_id" yaml:"national_id"`
	Address            string                        `json:"address" yaml:"address"`
	ResidencyStatus    valueobject.ResidencyStatus   `json:"residency_status" yaml:"residency_status"`
	YearsOfResidency   int                           `json:"years_of_residency" yaml:"years_of_residency"`
	PreviousOccupation string                        `json:"previous_occupation,omitempty" yaml:"previous_occupation,omitempty"`
	GuarantorCategory  valueobject.GuarantorCategory `json:"guarantor_category" yaml:"guarantor_category"`
}

// BusinessData holds the operating figures of the borrower's business.
// Missing amounts are zero.
type BusinessData struct {
	BusinessName     string                 `json:"business_name" yaml:"business_name"`
	BusinessType     string                 `json:"business_type" yaml:"business_type"`
	YearsOfOperation int                    `json:"years_of_operation" yaml:"years_of_operation"`
	TradeLicenseAge  int                    `json:"trade_license_age" yaml:"trade_license_age"`
	SellerType       valueobject.SellerType `json:"seller_type" yaml:"seller_type"`

	AverageDailySales    decimal.Decimal `json:"average_daily_sales" yaml:"average_daily_sales"`
	LastMonthSales       decimal.Decimal `json:"last_month_sales" yaml:"last_month_sales"`
	SalesHistory12mAvg   decimal.Decimal `json:"sales_history_12m_avg" yaml:"sales_history_12m_avg"`
	OtherIncomeLastMonth decimal.Decimal `json:"other_income_last_month" yaml:"other_income_last_month"`

	InventoryValuePresent    decimal.Decimal `json:"inventory_value_present" yaml:"inventory_value_present"`
	ProductPurchaseLastMonth decimal.Decimal `json:"product_purchase_last_month" yaml:"product_purchase_last_month"`
	StockHistory12mAvg       decimal.Decimal `json:"stock_history_12m_avg" yaml:"stock_history_12m_avg"`

	TotalExpenseLastMonth       decimal.Decimal `json:"total_expense_last_month" yaml:"total_expense_last_month"`
	SalaryExpenseLastMonth      decimal.Decimal `json:"salary_expense_last_month" yaml:"salary_expense_last_month"`
	RentUtilityExpenseLastMonth decimal.Decimal `json:"rent_utility_expense_last_month" yaml:"rent_utility_expense_last_month"`
	ExpenseHistory12mAvg        decimal.Decimal `json:"expense_history_12m_avg" yaml:"expense_history_12m_avg"`
	PersonalExpense             decimal.Decimal `json:"personal_expense" yaml:"personal_expense"`

	CashOnDelivery12mAvg decimal.Decimal `json:"cash_on_delivery_12m_avg" yaml:"cash_on_delivery_12m_avg"`
	DeliveriesLastMonth  int             `json:"deliveries_last_month" yaml:"deliveries_last_month"`
	RentAdvance          decimal.Decimal `json:"rent_advance" yaml:"rent_advance"`
	RentDeedPeriod       int             `json:"rent_deed_period" yaml:"rent_deed_period"`
}

// Revenue is the 12-month average sales, falling back to last month's sales.
func (b BusinessData) Revenue() decimal.Decimal {
	if !b.SalesHistory12mAvg.IsZero() {
		return b.SalesHistory12mAvg
	}
	return b.LastMonthSales
}

// Expenses is the 12-month average expense, falling back to last month's
// total expense.
func (b BusinessData) Expenses() decimal.Decimal {
	if !b.ExpenseHistory12mAvg.IsZero() {
		return b.ExpenseHistory12mAvg
	}
	return b.TotalExpenseLastMonth
}

// ExistingLoan is a credit facility the borrower already services.
type ExistingLoan struct {
	FIName             string                      `json:"fi_name" yaml:"fi_name"`
	FIType             valueobject.FIType          `json:"fi_type" yaml:"fi_type"`
	LoanType           string                      `json:"loan_type,omitempty" yaml:"loan_type,omitempty"`
	LoanAmount         decimal.Decimal             `json:"loan_amount" yaml:"loan_amount"`
	TenureYears        int                         `json:"tenure_years" yaml:"tenure_years"`
	OutstandingLoan    decimal.Decimal             `json:"outstanding_loan" yaml:"outstanding_loan"`
	MonthlyInstallment decimal.Decimal             `json:"monthly_installment" yaml:"monthly_installment"`
	OverdueAmount      decimal.Decimal             `json:"overdue_amount" yaml:"overdue_amount"`
	RepaymentStatus    valueobject.RepaymentStatus `json:"repayment_status" yaml:"repayment_status"`
	RepaidPercentage   decimal.Decimal             `json:"repaid_percentage" yaml:"repaid_percentage"`
}

// FinancialData holds the borrower's balances, transaction volumes and
// existing obligations.
type FinancialData struct {
	BankTransactionVolume1y     decimal.Decimal `json:"bank_transaction_volume_1y" yaml:"bank_transaction_volume_1y"`
	MFSTransactionVolumeMonthly decimal.Decimal `json:"mfs_transaction_volume_monthly" yaml:"mfs_transaction_volume_monthly"`
	ExistingLoans               []ExistingLoan  `json:"existing_loans" yaml:"existing_loans"`
	TotalAssets                 decimal.Decimal `json:"total_assets" yaml:"total_assets"`
	CashEquivalent              decimal.Decimal `json:"cash_equivalent" yaml:"cash_equivalent"`
	MonthlyIncome               decimal.Decimal `json:"monthly_income" yaml:"monthly_income"`
}

// HasLoans reports whether the borrower has any existing loans.
func (f FinancialData) HasLoans() bool { return len(f.ExistingLoans) > 0 }

// TotalMonthlyInstallments sums the installments of every existing loan.
func (f FinancialData) TotalMonthlyInstallments() decimal.Decimal {
	total := decimal.Zero
	for _, l := range f.ExistingLoans {
		total = total.Add(l.MonthlyInstallment)
	}
	return total
}

// TotalOutstanding sums the outstanding balance of every existing loan.
func (f FinancialData) TotalOutstanding() decimal.Decimal {
	total := decimal.Zero
	for _, l := range f.ExistingLoans {
		total = total.Add(l.OutstandingLoan)
	}
	return total
}

// AverageRepaidPercentage is the mean repaid percentage across existing
// loans, zero when there are none.
func (f FinancialData) AverageRepaidPercentage() decimal.Decimal {
	if len(f.ExistingLoans) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, l := range f.ExistingLoans {
		total = total.Add(l.RepaidPercentage)
	}
	return total.Div(decimal.NewFromInt(int64(len(f.ExistingLoans))))
}

// ApplicationData is the scorable content of an application.
type ApplicationData struct {
	Borrower  BorrowerInfo  `json:"borrower_info" yaml:"borrower_info"`
	Business  BusinessData  `json:"business_data" yaml:"business_data"`
	Financial FinancialData `json:"financial_data" yaml:"financial_data"`
}

// ---------------------------------------------------------------------------
// Application aggregate root
// ---------------------------------------------------------------------------

// Application is an immutable aggregate. Every mutation returns a new copy.
type Application struct {
	id                  string
	data                ApplicationData
	status              valueobject.ApplicationStatus
	submittedBy         string
	loanAmountRequested decimal.Decimal
	loanPurpose         string
	version             int
	createdAt           time.Time
	updatedAt           time.Time
	domainEvents        []event.DomainEvent
}

// ErrInvalidApplication is wrapped by every application construction error.
var ErrInvalidApplication = errors.New("invalid application")

// NewApplication creates a new application in pending status. An empty id
// is replaced by a generated one.
func NewApplication(
	id string,
	data ApplicationData,
	submittedBy string,
	loanAmountRequested decimal.Decimal,
	loanPurpose string,
	now time.Time,
) (Application, error) {
	if loanAmountRequested.IsNegative() {
		return Application{}, fmt.Errorf("%w: requested loan amount must not be negative", ErrInvalidApplication)
	}
	if data.Business.BusinessType == "" {
		return Application{}, fmt.Errorf("%w: business type is required", ErrInvalidApplication)
	}
	if id == "" {
		id = "APP-" + uuid.New().String()
	}

	app := Application{
		id:                  id,
		data:                data,
		status:              valueobject.StatusPending,
		submittedBy:         submittedBy,
		loanAmountRequested: loanAmountRequested,
		loanPurpose:         loanPurpose,
		version:             1,
		createdAt:           now,
		updatedAt:           now,
	}
	app.domainEvents = append(app.domainEvents, event.NewApplicationSubmitted(
		id, submittedBy, data.Business.BusinessType, loanAmountRequested, now,
	))
	return app, nil
}

// ReconstructApplication rebuilds an aggregate from persistence without side-effects.
func ReconstructApplication(
	id string,
	data ApplicationData,
	status valueobject.ApplicationStatus,
	submittedBy string,
	loanAmountRequested decimal.Decimal,
	loanPurpose string,
	version int,
	createdAt, updatedAt time.Time,
) Application {
	return Application{
		id:                  id,
		data:                data,
		status:              status,
		submittedBy:         submittedBy,
		loanAmountRequested: loanAmountRequested,
		loanPurpose:         loanPurpose,
		version:             version,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// StartProcessing moves the application into processing before scoring.
func (a Application) StartProcessing(now time.Time) (Application, error) {
	return a.transition(valueobject.StatusProcessing, "", now)
}

// Complete marks scoring as finished.
func (a Application) Complete(now time.Time) (Application, error) {
	return a.transition(valueobject.StatusCompleted, "", now)
}

// Reject closes the application without a score.
func (a Application) Reject(reason string, now time.Time) (Application, error) {
	return a.transition(valueobject.StatusRejected, reason, now)
}

// ReturnToPending reverts a failed scoring run.
func (a Application) ReturnToPending(reason string, now time.Time) (Application, error) {
	return a.transition(valueobject.StatusPending, reason, now)
}

func (a Application) transition(to valueobject.ApplicationStatus, reason string, now time.Time) (Application, error) {
	if !a.status.CanTransitionTo(to) {
		return a, valueobject.ErrInvalidStatusTransition
	}
	next := a
	next.status = to
	next.version = a.version + 1
	next.updatedAt = now
	next.domainEvents = copyEvents(a.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewApplicationStatusChanged(
		a.id, a.status.String(), to.String(), reason, now,
	))
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a Application) ID() string                            { return a.id }
func (a Application) Data() ApplicationData                 { return a.data }
func (a Application) Borrower() BorrowerInfo                { return a.data.Borrower }
func (a Application) Business() BusinessData                { return a.data.Business }
func (a Application) Financial() FinancialData              { return a.data.Financial }
func (a Application) Status() valueobject.ApplicationStatus { return a.status }
func (a Application) SubmittedBy() string                   { return a.submittedBy }
func (a Application) LoanAmountRequested() decimal.Decimal  { return a.loanAmountRequested }
func (a Application) LoanPurpose() string                   { return a.loanPurpose }
func (a Application) Version() int                          { return a.version }
func (a Application) CreatedAt() time.Time                  { return a.createdAt }
func (a Application) UpdatedAt() time.Time                  { return a.updatedAt }
func (a Application) DomainEvents() []event.DomainEvent     { return a.domainEvents }

// ClearEvents returns a copy with an empty event list (call after persisting).
func (a Application) ClearEvents() Application {
	next := a
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
