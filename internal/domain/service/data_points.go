package service

import (
	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

const (
	maxFinancialDiscipline = 35
	maxBusinessPerformance = 45
	maxCompliance          = 20
	maxDataPoints          = 100
)

// DataPointsModel scores financial discipline, business performance and
// compliance from raw application fields.
type DataPointsModel struct{}

// NewDataPointsModel creates a new DataPointsModel.
func NewDataPointsModel() *DataPointsModel {
	return &DataPointsModel{}
}

// Score computes the 0-100 data points score.
func (m *DataPointsModel) Score(app model.ApplicationData) model.DataPointsResult {
	fd := m.financialDiscipline(app.Financial)
	bp := m.businessPerformance(app.Business)
	c := m.compliance(app)

	return model.DataPointsResult{
		FinancialDiscipline: fd,
		BusinessPerformance: bp,
		Compliance:          c,
		Total:               minInt(maxDataPoints, fd.Total+bp.Total+c.Total),
	}
}

func (m *DataPointsModel) financialDiscipline(f model.FinancialData) model.FinancialDiscipline {
	fd := model.FinancialDiscipline{
		FINature:         fiNaturePoints(f.ExistingLoans),
		RepaidPercentage: 0,
		RepaymentStatus:  worstRepaymentPoints(f.ExistingLoans),
		RentPay:          2,
		BankTransactions: atLeast(f.BankTransactionVolume1y, at("500000", 2), at("250000", 1)),
		MFSTransactions:  atLeast(f.MFSTransactionVolumeMonthly, at("50000", 1)),
	}
	if f.HasLoans() {
		fd.RepaidPercentage = atLeast(f.AverageRepaidPercentage(),
			at("90", 10), at("70", 8), at("50", 7), at("25", 5))
	}

	fd.Total = minInt(maxFinancialDiscipline,
		fd.FINature+fd.RepaidPercentage+fd.RepaymentStatus+fd.RentPay+fd.BankTransactions+fd.MFSTransactions)
	return fd
}

// fiNaturePoints rewards the most senior lender the borrower already has.
func fiNaturePoints(loans []model.ExistingLoan) int {
	best := 0
	for _, l := range loans {
		var p int
		switch l.FIType {
		case valueobject.FITypeSupplier:
			p = 5
		case valueobject.FITypeMFI:
			p = 6
		case valueobject.FITypeNBFI:
			p = 8
		case valueobject.FITypeBank:
			p = 9
		case valueobject.FITypeDrutoloan:
			p = 10
		}
		if p > best {
			best = p
		}
	}
	return best
}

// worstRepaymentPoints scores the worst repayment status. No loans is a
// clean record.
func worstRepaymentPoints(loans []model.ExistingLoan) int {
	worst := 10
	for _, l := range loans {
		var p int
		switch l.RepaymentStatus {
		case valueobject.RepaymentOnTime:
			p = 10
		case valueobject.RepaymentOverdue3d:
			p = 7
		case valueobject.RepaymentOverdue7d:
			p = 5
		default:
			p = 0
		}
		if p < worst {
			worst = p
		}
	}
	return worst
}

func (m *DataPointsModel) businessPerformance(b model.BusinessData) model.BusinessPerformance {
	bp := model.BusinessPerformance{
		BusinessType:    businessTypePoints(b.BusinessType, 1),
		SellerType:      sellerTypePoints(b.SellerType),
		Inventory:       atLeast(b.InventoryValuePresent, at("1000000", 5), at("600000", 3), at("400000", 2)),
		ProductPurchase: atLeast(b.ProductPurchaseLastMonth, at("500000", 3), at("300000", 2), at("150000", 1)),
		StockHistory:    atLeast(b.StockHistory12mAvg, at("700000", 3), at("500000", 2), at("300000", 1)),
		DailySales:      atLeast(b.AverageDailySales, at("35000", 5), at("20000", 3), at("7000", 2)),
		LastMonthSales:  atLeast(b.LastMonthSales, at("1000000", 4), at("600000", 3), at("300000", 1)),
		SalesHistory:    atLeast(b.SalesHistory12mAvg, at("1000000", 3), at("600000", 2), at("300000", 1)),
		CashOnDelivery:  atLeast(b.CashOnDelivery12mAvg, at("200000", 2), at("100000", 1)),
		OtherIncome:     atLeast(b.OtherIncomeLastMonth, at("100000", 3), at("50000", 2), at("30000", 1)),
		Deliveries:      atLeast(decimal.NewFromInt(int64(b.DeliveriesLastMonth)), at("500", 2), at("300", 1)),
	}
	if b.LastMonthSales.IsPositive() {
		ratio := percent(b.TotalExpenseLastMonth, b.LastMonthSales)
		bp.ExpenseRatio = atMost(ratio, at("30", 3), at("40", 2), at("50", 1))
	}

	bp.Total = minInt(maxBusinessPerformance,
		bp.BusinessType+bp.SellerType+bp.Inventory+bp.ProductPurchase+bp.StockHistory+
			bp.DailySales+bp.LastMonthSales+bp.SalesHistory+bp.CashOnDelivery+
			bp.OtherIncome+bp.Deliveries+bp.ExpenseRatio)
	return bp
}

// businessTypePoints scores the category of a business type, returning
// fallback for unclassified types.
func businessTypePoints(businessType string, fallback int) int {
	category, ok := valueobject.ClassifyBusinessType(businessType)
	if !ok {
		return fallback
	}
	return category.Points()
}

func sellerTypePoints(s valueobject.SellerType) int {
	if s.IsWholesaler() {
		return 2
	}
	return 1
}

func (m *DataPointsModel) compliance(app model.ApplicationData) model.Compliance {
	b, br, f := app.Business, app.Borrower, app.Financial

	c := model.Compliance{
		ResidencyYears:   atLeast(decimal.NewFromInt(int64(br.YearsOfResidency)), at("10", 2), at("5", 1)),
		YearsOfOperation: atLeast(decimal.NewFromInt(int64(b.YearsOfOperation)), at("10", 3), at("5", 1)),
		TradeLicense:     atLeast(decimal.NewFromInt(int64(b.TradeLicenseAge)), at("4", 2), at("2", 1)),
		RentDeed:         atLeast(decimal.NewFromInt(int64(b.RentDeedPeriod)), at("3", 1)),
		RentAdvance:      atLeast(b.RentAdvance, at("500000", 2)),
	}
	if f.MonthlyIncome.IsPositive() {
		c.PersonalExpenseRatio = atMost(percent(b.PersonalExpense, f.MonthlyIncome), at("30", 2), at("40", 1))
	}
	if b.YearsOfOperation >= 2 {
		c.PreviousOccupation = 1
	}
	if br.ResidencyStatus.IsPermanent() {
		c.PermanentResidency = 3
	}
	switch br.GuarantorCategory {
	case valueobject.GuarantorStrong:
		c.Guarantor = 4
	case valueobject.GuarantorMedium:
		c.Guarantor = 2
	}

	c.Total = minInt(maxCompliance,
		c.PersonalExpenseRatio+c.PreviousOccupation+c.PermanentResidency+c.ResidencyYears+
			c.Guarantor+c.YearsOfOperation+c.TradeLicense+c.RentDeed+c.RentAdvance)
	return c
}
