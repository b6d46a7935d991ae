package service

import (
	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

const (
	maxCharacter     = 25
	maxCreditHistory = 20
	maxCapacity      = 30
	maxCollateral    = 25
	maxConditions    = 5

	// neutralCreditHistory is awarded when the borrower has no loan record.
	neutralCreditHistory = 8
)

var (
	maxCapital            = decimal.NewFromInt(15)
	inventoryCeiling      = decimal.NewFromInt(1000000)
	rentAdvanceCeiling    = decimal.NewFromInt(500000)
	maxInventoryCapital   = decimal.NewFromInt(5)
	maxRentAdvanceCapital = decimal.RequireFromString("2.5")
)

// BorrowerAttributesModel scores the 5C framework: Character, Capital,
// Capacity, Collateral and Conditions.
type BorrowerAttributesModel struct{}

// NewBorrowerAttributesModel creates a new BorrowerAttributesModel.
func NewBorrowerAttributesModel() *BorrowerAttributesModel {
	return &BorrowerAttributesModel{}
}

// Score computes the five sub-scores, their total and the 5C narrative.
func (m *BorrowerAttributesModel) Score(app model.ApplicationData) model.BorrowerAttributesResult {
	res := model.BorrowerAttributesResult{
		Character:  m.character(app.Financial),
		Capital:    m.capital(app),
		Capacity:   m.capacity(app),
		Collateral: m.collateral(app),
		Conditions: m.conditions(app.Business),
	}

	res.Total = decimal.NewFromInt(int64(res.Character.Total)).
		Add(res.Capital.Total).
		Add(decimal.NewFromInt(int64(res.Capacity.Total))).
		Add(decimal.NewFromInt(int64(res.Collateral.Total))).
		Add(decimal.NewFromInt(int64(res.Conditions.Total)))
	res.Analysis = fiveCAnalysis(res)
	return res
}

// ---------------------------------------------------------------------------
// Character (25)
// ---------------------------------------------------------------------------

func (m *BorrowerAttributesModel) character(f model.FinancialData) model.Character {
	c := model.Character{
		CreditHistory:     creditHistory(f.ExistingLoans),
		OfficerAssessment: 1,
		RentPunctuality:   2,
		BankTransactions:  atLeast(f.BankTransactionVolume1y, at("500000", 1)),
		MFSTransactions:   atLeast(f.MFSTransactionVolumeMonthly, at("50000", 1)),
	}
	c.Total = minInt(maxCharacter,
		c.CreditHistory+c.OfficerAssessment+c.RentPunctuality+c.BankTransactions+c.MFSTransactions)
	return c
}

// creditHistory averages per-loan lender, repayment and status points,
// truncated and capped at 20.
func creditHistory(loans []model.ExistingLoan) int {
	if len(loans) == 0 {
		return neutralCreditHistory
	}

	total := 0
	for _, l := range loans {
		total += lenderWeight(l.FIType)
		total += atLeast(l.RepaidPercentage, at("90", 5), at("70", 4), at("50", 3), at("25", 2), at("10", 1))
		total += statusWeight(l.RepaymentStatus)
	}
	return minInt(maxCreditHistory, total/len(loans))
}

func lenderWeight(t valueobject.FIType) int {
	switch t {
	case valueobject.FITypeMFI:
		return 4
	case valueobject.FITypeNBFI:
		return 5
	case valueobject.FITypeBank:
		return 6
	case valueobject.FITypeDrutoloan:
		return 7
	default:
		return 3
	}
}

func statusWeight(s valueobject.RepaymentStatus) int {
	switch s {
	case valueobject.RepaymentOnTime:
		return 8
	case valueobject.RepaymentOverdue3d:
		return 5
	case valueobject.RepaymentDefault:
		return 0
	default:
		return 4
	}
}

// ---------------------------------------------------------------------------
// Capital (15)
// ---------------------------------------------------------------------------

func (m *BorrowerAttributesModel) capital(app model.ApplicationData) model.Capital {
	b, f := app.Business, app.Financial

	inventory := b.InventoryValuePresent.Div(inventoryCeiling).Mul(maxInventoryCapital).Truncate(0)
	rentAdvance := decimal.Min(maxRentAdvanceCapital,
		b.RentAdvance.Div(rentAdvanceCeiling).Mul(maxRentAdvanceCapital)).Round(2)

	c := model.Capital{
		Inventory:   int(decimal.Min(maxInventoryCapital, inventory).IntPart()),
		RentAdvance: rentAdvance,
	}

	// Leverage and current ratios use capital-specific denominators; an
	// empty denominator is treated as the worst case (100%).
	leverage := hundred
	if assets := b.InventoryValuePresent.Add(b.RentAdvance).Add(f.CashEquivalent); assets.IsPositive() {
		leverage = percent(f.TotalOutstanding(), assets)
	}
	switch {
	case leverage.LessThanOrEqual(decimal.NewFromInt(20)):
		c.Leverage = decimal.RequireFromString("3.5")
	case leverage.LessThanOrEqual(decimal.NewFromInt(30)):
		c.Leverage = decimal.NewFromInt(2)
	case leverage.LessThanOrEqual(decimal.NewFromInt(40)):
		c.Leverage = decimal.NewFromInt(1)
	default:
		c.Leverage = decimal.Zero
	}

	current := hundred
	if inflow := f.MonthlyIncome.Add(b.OtherIncomeLastMonth); inflow.IsPositive() {
		current = percent(f.TotalMonthlyInstallments().Add(b.PersonalExpense), inflow)
	}
	c.CurrentRatio = atMost(current, at("20", 4), at("30", 3), at("40", 1))

	c.Total = decimal.Min(maxCapital,
		decimal.NewFromInt(int64(c.Inventory)).Add(c.RentAdvance).Add(c.Leverage).Add(decimal.NewFromInt(int64(c.CurrentRatio))))
	return c
}

// ---------------------------------------------------------------------------
// Capacity (30)
// ---------------------------------------------------------------------------

func (m *BorrowerAttributesModel) capacity(app model.ApplicationData) model.Capacity {
	b, f := app.Business, app.Financial
	installments := f.TotalMonthlyInstallments()

	c := model.Capacity{
		DailySales:     atLeast(b.AverageDailySales, at("35000", 3), at("20000", 2), at("7000", 1)),
		MonthlySales:   atLeast(b.LastMonthSales, at("1000000", 3), at("600000", 2), at("300000", 1)),
		OtherIncome:    atLeast(b.OtherIncomeLastMonth, at("100000", 3), at("50000", 2), at("30000", 1)),
		CashOnDelivery: atLeast(b.CashOnDelivery12mAvg, at("300000", 3), at("200000", 2), at("100000", 1)),
	}

	if b.LastMonthSales.IsPositive() {
		c.ExpenseRatio = atMost(percent(b.TotalExpenseLastMonth, b.LastMonthSales), at("30", 3), at("40", 2), at("50", 1))
	}

	if f.MonthlyIncome.IsPositive() {
		c.PersonalExpense = atMost(percent(b.PersonalExpense, f.MonthlyIncome), at("25", 3), at("30", 2), at("35", 1))
		c.InterestCoverage = atMost(percent(installments, f.MonthlyIncome), at("2.5", 3), at("5", 2), at("8", 1))
	}

	revenue, expenses := b.Revenue(), b.Expenses()
	if revenue.IsPositive() {
		c.Profitability = atLeast(percent(revenue.Sub(expenses), revenue), at("20", 3), at("15", 2), at("10", 1))
	}

	if installments.IsPositive() && b.AverageDailySales.IsPositive() {
		c.Liquidity = atLeast(percent(b.AverageDailySales, installments), at("20", 3), at("15", 2), at("10", 1))
	} else {
		c.Liquidity = 3
	}

	if grossProfit := revenue.Sub(expenses).Add(b.OtherIncomeLastMonth); grossProfit.IsPositive() {
		c.DebtBurden = atMost(percent(installments, grossProfit), at("30", 3), at("40", 2), at("50", 1))
	}

	c.Total = minInt(maxCapacity,
		c.DailySales+c.MonthlySales+c.OtherIncome+c.CashOnDelivery+c.ExpenseRatio+
			c.PersonalExpense+c.Profitability+c.InterestCoverage+c.Liquidity+c.DebtBurden)
	return c
}

// ---------------------------------------------------------------------------
// Collateral (25) and Conditions (5)
// ---------------------------------------------------------------------------

func (m *BorrowerAttributesModel) collateral(app model.ApplicationData) model.Collateral {
	b, br := app.Business, app.Borrower

	c := model.Collateral{
		Inventory:   atLeast(b.InventoryValuePresent, at("1000000", 5)),
		RentAdvance: atLeast(b.RentAdvance, at("500000", 1)),
	}
	if br.YearsOfResidency >= 5 {
		c.ResidencyYears = 1
	}
	switch br.GuarantorCategory {
	case valueobject.GuarantorStrong:
		c.Guarantor = 10
	case valueobject.GuarantorMedium:
		c.Guarantor = 5
	}
	if br.ResidencyStatus.IsPermanent() {
		c.PermanentResidency = 7
	}
	if b.YearsOfOperation >= 5 {
		c.YearsOfOperation = 1
	}

	c.Total = minInt(maxCollateral,
		c.Inventory+c.ResidencyYears+c.Guarantor+c.PermanentResidency+c.RentAdvance+c.YearsOfOperation)
	return c
}

func (m *BorrowerAttributesModel) conditions(b model.BusinessData) model.Conditions {
	c := model.Conditions{
		SellerType:   sellerTypePoints(b.SellerType),
		BusinessType: businessTypePoints(b.BusinessType, 2),
	}
	c.Total = minInt(maxConditions, c.SellerType+c.BusinessType)
	return c
}

// ---------------------------------------------------------------------------
// 5C narrative
// ---------------------------------------------------------------------------

func fiveCAnalysis(r model.BorrowerAttributesResult) model.FiveCAnalysis {
	a := model.FiveCAnalysis{
		Strengths:       []string{},
		Weaknesses:      []string{},
		Recommendations: []string{},
		RiskFactors:     []string{},
	}

	switch {
	case r.Character.Total >= 20:
		a.Strengths = append(a.Strengths, "Strong credit history and payment discipline")
	case r.Character.Total <= 15:
		a.Weaknesses = append(a.Weaknesses, "Poor credit history or payment behavior")
		a.RiskFactors = append(a.RiskFactors, "Character risk - payment discipline concerns")
	}

	switch {
	case r.Capital.Total.GreaterThanOrEqual(decimal.NewFromInt(12)):
		a.Strengths = append(a.Strengths, "Good capital base and asset backing")
	case r.Capital.Total.LessThanOrEqual(decimal.NewFromInt(8)):
		a.Weaknesses = append(a.Weaknesses, "Limited capital and asset base")
		a.Recommendations = append(a.Recommendations, "Consider additional collateral or guarantor strengthening")
	}

	switch {
	case r.Capacity.Total >= 24:
		a.Strengths = append(a.Strengths, "Strong repayment capacity and cash flow")
	case r.Capacity.Total <= 18:
		a.Weaknesses = append(a.Weaknesses, "Limited repayment capacity")
		a.RiskFactors = append(a.RiskFactors, "Capacity risk - cash flow concerns")
		a.Recommendations = append(a.Recommendations, "Review loan amount and tenure to match capacity")
	}

	switch {
	case r.Collateral.Total >= 20:
		a.Strengths = append(a.Strengths, "Adequate collateral and security")
	case r.Collateral.Total <= 15:
		a.Weaknesses = append(a.Weaknesses, "Insufficient collateral backing")
		a.Recommendations = append(a.Recommendations, "Require additional collateral or security")
	}

	if r.Conditions.Total <= 2 {
		a.RiskFactors = append(a.RiskFactors, "Industry/business environment risks")
		a.Recommendations = append(a.Recommendations, "Enhanced monitoring due to business conditions")
	}
	return a
}
