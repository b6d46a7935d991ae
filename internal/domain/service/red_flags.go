package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

const (
	impactAutoReject = "Auto-reject application"
	impactGradeCap   = "Grade capped at B"

	minBusinessYears = 2
)

var (
	daysPerMonth         = decimal.NewFromInt(30)
	debtBurdenHardCutoff = decimal.NewFromInt(60)
)

// redFlags evaluates hard flags first, then soft flags.
func redFlags(app model.ApplicationData, ratios model.CreditRatiosResult) []model.RedFlag {
	flags := hardFlags(app, ratios)
	return append(flags, softFlags(app)...)
}

func hardFlag(name, description string) model.RedFlag {
	return model.RedFlag{
		Type:        valueobject.FlagTypeHard,
		Name:        name,
		Description: description,
		Severity:    valueobject.SeverityCritical,
		Impact:      impactAutoReject,
	}
}

func softFlag(name, description string) model.RedFlag {
	return model.RedFlag{
		Type:        valueobject.FlagTypeSoft,
		Name:        name,
		Description: description,
		Severity:    valueobject.SeverityMedium,
		Impact:      impactGradeCap,
	}
}

func hardFlags(app model.ApplicationData, ratios model.CreditRatiosResult) []model.RedFlag {
	flags := []model.RedFlag{}

	for _, l := range app.Financial.ExistingLoans {
		if l.RepaymentStatus.IsDefault() {
			flags = append(flags, hardFlag(model.FlagActiveDefault, "Active default with "+l.FIName))
		}
	}

	// Revenue is approximated as last month's sales over 30 days. A business
	// reporting no sales is not flagged here.
	revenue := app.Business.LastMonthSales.Div(daysPerMonth)
	if revenue.IsPositive() && app.Financial.TotalMonthlyInstallments().GreaterThan(revenue) {
		flags = append(flags, hardFlag(model.FlagRevenueBelowObligations,
			"Monthly revenue less than existing installment obligations"))
	}

	if dbr, ok := ratios.Ratio(model.RatioDebtBurden); ok && dbr.Value.GreaterThanOrEqual(debtBurdenHardCutoff) {
		flags = append(flags, hardFlag(model.FlagHighDebtBurden,
			fmt.Sprintf("Debt-to-burden ratio: %s%%", dbr.Value.StringFixed(2))))
	}
	return flags
}

func softFlags(app model.ApplicationData) []model.RedFlag {
	flags := []model.RedFlag{}

	if app.Borrower.GuarantorCategory.Equal(valueobject.GuarantorWeak) {
		flags = append(flags, softFlag(model.FlagWeakGuarantor, "Guarantor has weak financial standing"))
	}
	if years := app.Business.YearsOfOperation; years < minBusinessYears {
		flags = append(flags, softFlag(model.FlagNewBusiness,
			fmt.Sprintf("Business operational for only %d years", years)))
	}
	return flags
}
