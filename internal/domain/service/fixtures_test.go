package service_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// strongApplication is an established grocery retailer with one clean bank
// loan. Expected component totals: data points 90, credit ratios 16.67,
// borrower attributes 93.
func strongApplication() model.ApplicationData {
	return model.ApplicationData{
		Borrower: model.BorrowerInfo{
			FullName:          "Karim Ahmed",
			ResidencyStatus:   valueobject.ResidencyPermanent,
			YearsOfResidency:  10,
			GuarantorCategory: valueobject.GuarantorStrong,
		},
		Business: model.BusinessData{
			BusinessName:             "Karim General Store",
			BusinessType:             "grocery_shop",
			YearsOfOperation:         12,
			TradeLicenseAge:          5,
			SellerType:               valueobject.SellerRetailer,
			AverageDailySales:        d(40000),
			LastMonthSales:           d(1200000),
			SalesHistory12mAvg:       d(1100000),
			OtherIncomeLastMonth:     d(60000),
			InventoryValuePresent:    d(1200000),
			ProductPurchaseLastMonth: d(600000),
			StockHistory12mAvg:       d(800000),
			TotalExpenseLastMonth:    d(300000),
			ExpenseHistory12mAvg:     d(330000),
			PersonalExpense:          d(20000),
			CashOnDelivery12mAvg:     d(250000),
			DeliveriesLastMonth:      600,
			RentAdvance:              d(600000),
			RentDeedPeriod:           5,
		},
		Financial: model.FinancialData{
			BankTransactionVolume1y:     d(600000),
			MFSTransactionVolumeMonthly: d(60000),
			ExistingLoans: []model.ExistingLoan{
				{
					FIName:             "City Bank",
					FIType:             valueobject.FITypeBank,
					LoanAmount:         d(500000),
					OutstandingLoan:    d(200000),
					MonthlyInstallment: d(20000),
					RepaymentStatus:    valueobject.RepaymentOnTime,
					RepaidPercentage:   d(95),
				},
			},
			TotalAssets:    d(2500000),
			CashEquivalent: d(150000),
			MonthlyIncome:  d(200000),
		},
	}
}

// thinApplication has no income or sales, one small MFI loan, a weak
// guarantor and a brand new business. Expected component totals: data
// points 20, credit ratios 0, borrower attributes 21.
func thinApplication() model.ApplicationData {
	return model.ApplicationData{
		Borrower: model.BorrowerInfo{
			FullName:          "Nasima Begum",
			ResidencyStatus:   valueobject.ResidencyTemporary,
			GuarantorCategory: valueobject.GuarantorWeak,
		},
		Financial: model.FinancialData{
			ExistingLoans: []model.ExistingLoan{
				{
					FIName:             "Village MFI",
					FIType:             valueobject.FITypeMFI,
					OutstandingLoan:    d(10000),
					MonthlyInstallment: d(5000),
					RepaymentStatus:    valueobject.RepaymentOnTime,
				},
			},
		},
	}
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// responses builds a response set from question id to option index.
func responses(opts map[string]int, start, end *time.Time) model.PsychometricResponses {
	r := model.PsychometricResponses{
		Answers:   make(map[string]model.PsychometricAnswer, len(opts)),
		StartTime: start,
		EndTime:   end,
	}
	for id, o := range opts {
		r.Answers[id] = model.PsychometricAnswer{SelectedOption: intPtr(o)}
	}
	return r
}

// goodResponses totals 85: 15 + 20 + 18 + 20 + 12, taken over ten minutes.
func goodResponses() model.PsychometricResponses {
	return responses(
		map[string]int{"td_1": 1, "ip_1": 0, "hr_1": 1, "r_1": 0, "fo_1": 3},
		timePtr(testNow),
		timePtr(testNow.Add(10*time.Minute)),
	)
}
