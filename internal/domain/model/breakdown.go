package model

import (
	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Data points breakdown
// ---------------------------------------------------------------------------

// FinancialDiscipline is worth at most 35 points.
type FinancialDiscipline struct {
	FINature         int `json:"fi_nature"`
	RepaidPercentage int `json:"repaid_percentage"`
	RepaymentStatus  int `json:"repayment_status"`
	RentPay          int `json:"rent_pay"`
	BankTransactions int `json:"bank_transactions"`
	MFSTransactions  int `json:"mfs_transactions"`
	Total            int `json:"total"`
}

// BusinessPerformance is worth at most 45 points.
type BusinessPerformance struct {
	BusinessType    int `json:"business_type"`
	SellerType      int `json:"seller_type"`
	Inventory       int `json:"inventory"`
	ProductPurchase int `json:"product_purchase"`
	StockHistory    int `json:"stock_history"`
	DailySales      int `json:"daily_sales"`
	LastMonthSales  int `json:"last_month_sales"`
	SalesHistory    int `json:"sales_history"`
	CashOnDelivery  int `json:"cash_on_delivery"`
	OtherIncome     int `json:"other_income"`
	Deliveries      int `json:"deliveries"`
	ExpenseRatio    int `json:"expense_ratio"`
	Total           int `json:"total"`
}

// Compliance is worth at most 20 points.
type Compliance struct {
	PersonalExpenseRatio int `json:"personal_expense_ratio"`
	PreviousOccupation   int `json:"previous_occupation"`
	PermanentResidency   int `json:"permanent_residency"`
	ResidencyYears       int `json:"residency_years"`
	Guarantor            int `json:"guarantor"`
	YearsOfOperation     int `json:"years_of_operation"`
	TradeLicense         int `json:"trade_license"`
	RentDeed             int `json:"rent_deed"`
	RentAdvance          int `json:"rent_advance"`
	Total                int `json:"total"`
}

// DataPointsResult is the output of the data points model (0-100).
type DataPointsResult struct {
	FinancialDiscipline FinancialDiscipline `json:"financial_discipline"`
	BusinessPerformance BusinessPerformance `json:"business_performance"`
	Compliance          Compliance          `json:"compliance"`
	Total               int                 `json:"total"`
}

// ---------------------------------------------------------------------------
// Credit ratios breakdown
// ---------------------------------------------------------------------------

const (
	RatioProfitability  = "profitability"
	RatioDebtBurden     = "debt_burden"
	RatioLeverage       = "leverage"
	RatioInterestIncome = "interest_income"
	RatioLiquidity      = "liquidity"
	RatioCurrent        = "current"
)

// RatioScore is one banded ratio. Value is a percentage.
type RatioScore struct {
	Name         string           `json:"ratio_name"`
	Value        decimal.Decimal  `json:"ratio_value"`
	Score        int              `json:"score"`
	MaxScore     int              `json:"max_score"`
	Band         valueobject.Band `json:"band"`
	ThresholdMet bool             `json:"threshold_met"`
}

// RiskIndicator points at a ratio that fell into the red band.
type RiskIndicator struct {
	Ratio string          `json:"ratio"`
	Value decimal.Decimal `json:"value"`
	Issue string          `json:"issue"`
}

// RatioAnalysis summarizes the six ratios.
type RatioAnalysis struct {
	Green          int             `json:"green"`
	Amber          int             `json:"amber"`
	Red            int             `json:"red"`
	ThresholdsMet  int             `json:"thresholds_met"`
	AverageScore   decimal.Decimal `json:"average_score"`
	RiskIndicators []RiskIndicator `json:"risk_indicators"`
}

// CreditRatiosResult is the output of the credit ratios model. Total is the
// mean of the six ratio scores.
type CreditRatiosResult struct {
	Ratios   []RatioScore    `json:"ratios"`
	Total    decimal.Decimal `json:"total"`
	Analysis RatioAnalysis   `json:"analysis"`
}

// Ratio returns the named ratio score.
func (r CreditRatiosResult) Ratio(name string) (RatioScore, bool) {
	for _, rs := range r.Ratios {
		if rs.Name == name {
			return rs, true
		}
	}
	return RatioScore{}, false
}

// ---------------------------------------------------------------------------
// 5C borrower attributes breakdown
// ---------------------------------------------------------------------------

// Character is worth at most 25 points.
type Character struct {
	CreditHistory     int `json:"credit_history"`
	OfficerAssessment int `json:"officer_assessment"`
	RentPunctuality   int `json:"rent_punctuality"`
	BankTransactions  int `json:"bank_transactions"`
	MFSTransactions   int `json:"mfs_transactions"`
	Total             int `json:"total"`
}

// Capital is worth at most 15 points; rent advance and leverage carry
// fractional points.
type Capital struct {
	Inventory    int             `json:"inventory"`
	RentAdvance  decimal.Decimal `json:"rent_advance"`
	Leverage     decimal.Decimal `json:"leverage"`
	CurrentRatio int             `json:"current_ratio"`
	Total        decimal.Decimal `json:"total"`
}

// Capacity is worth at most 30 points.
type Capacity struct {
	DailySales       int `json:"daily_sales"`
	MonthlySales     int `json:"monthly_sales"`
	OtherIncome      int `json:"other_income"`
	CashOnDelivery   int `json:"cash_on_delivery"`
	ExpenseRatio     int `json:"expense_ratio"`
	PersonalExpense  int `json:"personal_expense"`
	Profitability    int `json:"profitability"`
	InterestCoverage int `json:"interest_coverage"`
	Liquidity        int `json:"liquidity"`
	DebtBurden       int `json:"debt_burden"`
	Total            int `json:"total"`
}

// Collateral is worth at most 25 points.
type Collateral struct {
	Inventory          int `json:"inventory"`
	ResidencyYears     int `json:"residency_years"`
	Guarantor          int `json:"guarantor"`
	PermanentResidency int `json:"permanent_residency"`
	RentAdvance        int `json:"rent_advance"`
	YearsOfOperation   int `json:"years_of_operation"`
	Total              int `json:"total"`
}

// Conditions is worth at most 5 points.
type Conditions struct {
	SellerType   int `json:"seller_type"`
	BusinessType int `json:"business_type"`
	Total        int `json:"total"`
}

// FiveCAnalysis is the narrative derived from the 5C sub-scores.
type FiveCAnalysis struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"risk_factors"`
}

// BorrowerAttributesResult is the output of the 5C model (0-100).
type BorrowerAttributesResult struct {
	Character  Character       `json:"character"`
	Capital    Capital         `json:"capital"`
	Capacity   Capacity        `json:"capacity"`
	Collateral Collateral      `json:"collateral"`
	Conditions Conditions      `json:"conditions"`
	Total      decimal.Decimal `json:"total"`
	Analysis   FiveCAnalysis   `json:"analysis"`
}
