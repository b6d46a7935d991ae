package service

import (
	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

// Per-ratio score caps.
const (
	maxProfitability  = 22
	maxDebtBurden     = 20
	maxLeverage       = 18
	maxInterestIncome = 12
	maxLiquidity      = 16
	maxCurrent        = 12
)

var (
	wholesalerProfitThreshold = decimal.NewFromInt(3)
	retailerProfitThreshold   = decimal.NewFromInt(10)
	amberProfitFactor         = decimal.RequireFromString("0.8")
	interestShare             = decimal.RequireFromString("0.15")
)

// CreditRatiosModel computes six banded financial ratios. The model total
// is the mean of the six ratio scores.
type CreditRatiosModel struct{}

// NewCreditRatiosModel creates a new CreditRatiosModel.
func NewCreditRatiosModel() *CreditRatiosModel {
	return &CreditRatiosModel{}
}

// Score computes every ratio, their mean and the ratio analysis.
func (m *CreditRatiosModel) Score(app model.ApplicationData) model.CreditRatiosResult {
	ratios := []model.RatioScore{
		m.profitability(app.Business),
		m.debtBurden(app),
		m.leverage(app),
		m.interestIncome(app),
		m.liquidity(app),
		m.current(app),
	}

	sum := 0
	for _, r := range ratios {
		sum += r.Score
	}
	mean := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(ratios)))).Round(2)

	return model.CreditRatiosResult{
		Ratios:   ratios,
		Total:    mean,
		Analysis: analyseRatios(ratios, mean),
	}
}

// redRatio is the outcome for a ratio whose denominator is not positive.
func redRatio(name string, maxScore int) model.RatioScore {
	return model.RatioScore{
		Name:     name,
		Value:    decimal.Zero,
		Score:    0,
		MaxScore: maxScore,
		Band:     valueobject.BandRed,
	}
}

// banded builds a RatioScore. Band comparisons use the unrounded value; the
// reported value is rounded half-up to two places.
func banded(name string, maxScore int, value decimal.Decimal, band valueobject.Band, score int, met bool) model.RatioScore {
	return model.RatioScore{
		Name:         name,
		Value:        value.Round(2),
		Score:        score,
		MaxScore:     maxScore,
		Band:         band,
		ThresholdMet: met,
	}
}

// profitability = (revenue - expenses) / revenue. Threshold 3% for
// wholesalers, 10% otherwise; amber within 80% of the threshold.
func (m *CreditRatiosModel) profitability(b model.BusinessData) model.RatioScore {
	revenue := b.Revenue()
	if !revenue.IsPositive() {
		return redRatio(model.RatioProfitability, maxProfitability)
	}
	value := percent(revenue.Sub(b.Expenses()), revenue)

	threshold := retailerProfitThreshold
	if b.SellerType.IsWholesaler() {
		threshold = wholesalerProfitThreshold
	}

	switch {
	case value.GreaterThanOrEqual(threshold):
		return banded(model.RatioProfitability, maxProfitability, value, valueobject.BandGreen, 22, true)
	case value.GreaterThanOrEqual(threshold.Mul(amberProfitFactor)):
		return banded(model.RatioProfitability, maxProfitability, value, valueobject.BandAmber, 13, false)
	default:
		return banded(model.RatioProfitability, maxProfitability, value, valueobject.BandRed, 0, false)
	}
}

// debtBurden = installments / (revenue - expenses + other income).
func (m *CreditRatiosModel) debtBurden(app model.ApplicationData) model.RatioScore {
	b := app.Business
	grossMargin := b.Revenue().Sub(b.Expenses()).Add(b.OtherIncomeLastMonth)
	if !grossMargin.IsPositive() {
		return redRatio(model.RatioDebtBurden, maxDebtBurden)
	}
	value := percent(app.Financial.TotalMonthlyInstallments(), grossMargin)

	switch {
	case value.LessThanOrEqual(decimal.NewFromInt(50)):
		return banded(model.RatioDebtBurden, maxDebtBurden, value, valueobject.BandGreen, 20, true)
	case value.LessThanOrEqual(decimal.NewFromInt(60)):
		return banded(model.RatioDebtBurden, maxDebtBurden, value, valueobject.BandAmber, 12, false)
	default:
		return banded(model.RatioDebtBurden, maxDebtBurden, value, valueobject.BandRed, 0, false)
	}
}

// leverage = outstanding debt / (inventory + rent advance + cash).
func (m *CreditRatiosModel) leverage(app model.ApplicationData) model.RatioScore {
	b, f := app.Business, app.Financial
	assets := b.InventoryValuePresent.Add(b.RentAdvance).Add(f.CashEquivalent)
	if !assets.IsPositive() {
		return redRatio(model.RatioLeverage, maxLeverage)
	}
	value := percent(f.TotalOutstanding(), assets)

	switch {
	case value.LessThanOrEqual(decimal.NewFromInt(45)):
		return banded(model.RatioLeverage, maxLeverage, value, valueobject.BandGreen, 18, true)
	case value.LessThanOrEqual(decimal.NewFromInt(60)):
		return banded(model.RatioLeverage, maxLeverage, value, valueobject.BandAmber, 10, false)
	default:
		return banded(model.RatioLeverage, maxLeverage, value, valueobject.BandRed, 0, false)
	}
}

// interestIncome estimates interest as 15% of installments over revenue plus
// other income.
func (m *CreditRatiosModel) interestIncome(app model.ApplicationData) model.RatioScore {
	b := app.Business
	income := b.Revenue().Add(b.OtherIncomeLastMonth)
	if !income.IsPositive() {
		return redRatio(model.RatioInterestIncome, maxInterestIncome)
	}
	interest := app.Financial.TotalMonthlyInstallments().Mul(interestShare)
	value := percent(interest, income)

	switch {
	case value.LessThanOrEqual(decimal.NewFromInt(8)):
		return banded(model.RatioInterestIncome, maxInterestIncome, value, valueobject.BandGreen, 12, true)
	case value.LessThanOrEqual(decimal.NewFromInt(10)):
		return banded(model.RatioInterestIncome, maxInterestIncome, value, valueobject.BandAmber, 7, false)
	default:
		return banded(model.RatioInterestIncome, maxInterestIncome, value, valueobject.BandRed, 0, false)
	}
}

// liquidity = cash (or average daily sales) / installments. Without
// installments the borrower is fully liquid.
func (m *CreditRatiosModel) liquidity(app model.ApplicationData) model.RatioScore {
	installments := app.Financial.TotalMonthlyInstallments()
	if !installments.IsPositive() {
		return model.RatioScore{
			Name:         model.RatioLiquidity,
			Value:        hundred,
			Score:        maxLiquidity,
			MaxScore:     maxLiquidity,
			Band:         valueobject.BandGreen,
			ThresholdMet: true,
		}
	}
	cash := app.Financial.CashEquivalent
	if cash.IsZero() {
		cash = app.Business.AverageDailySales
	}
	value := percent(cash, installments)

	switch {
	case value.GreaterThanOrEqual(decimal.NewFromInt(35)):
		return banded(model.RatioLiquidity, maxLiquidity, value, valueobject.BandGreen, 16, true)
	case value.GreaterThanOrEqual(decimal.NewFromInt(20)):
		return banded(model.RatioLiquidity, maxLiquidity, value, valueobject.BandAmber, 9, true)
	default:
		return banded(model.RatioLiquidity, maxLiquidity, value, valueobject.BandRed, 0, false)
	}
}

// current = (installments + personal expense) / (income + other income).
func (m *CreditRatiosModel) current(app model.ApplicationData) model.RatioScore {
	b, f := app.Business, app.Financial
	inflow := f.MonthlyIncome.Add(b.OtherIncomeLastMonth)
	if !inflow.IsPositive() {
		return redRatio(model.RatioCurrent, maxCurrent)
	}
	value := percent(f.TotalMonthlyInstallments().Add(b.PersonalExpense), inflow)

	switch {
	case value.LessThanOrEqual(decimal.NewFromInt(45)):
		return banded(model.RatioCurrent, maxCurrent, value, valueobject.BandGreen, 12, true)
	case value.LessThanOrEqual(decimal.NewFromInt(60)):
		return banded(model.RatioCurrent, maxCurrent, value, valueobject.BandAmber, 7, false)
	default:
		return banded(model.RatioCurrent, maxCurrent, value, valueobject.BandRed, 0, false)
	}
}

const belowThreshold = "Below acceptable threshold"

func analyseRatios(ratios []model.RatioScore, mean decimal.Decimal) model.RatioAnalysis {
	a := model.RatioAnalysis{
		AverageScore:   mean,
		RiskIndicators: []model.RiskIndicator{},
	}
	for _, r := range ratios {
		switch r.Band {
		case valueobject.BandGreen:
			a.Green++
		case valueobject.BandAmber:
			a.Amber++
		default:
			a.Red++
			a.RiskIndicators = append(a.RiskIndicators, model.RiskIndicator{
				Ratio: r.Name,
				Value: r.Value,
				Issue: belowThreshold,
			})
		}
		if r.ThresholdMet {
			a.ThresholdsMet++
		}
	}
	return a
}
