package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock implementations ---

type mockApplicationRepository struct {
	mu           sync.Mutex
	saveFunc     func(ctx context.Context, app model.Application) error
	apps         map[string]model.Application
	savedApps    []model.Application
	findByIDHits int
}

func newMockApplicationRepository(apps ...model.Application) *mockApplicationRepository {
	m := &mockApplicationRepository{apps: map[string]model.Application{}}
	for _, a := range apps {
		m.apps[a.ID()] = a.ClearEvents()
	}
	return m
}

func (m *mockApplicationRepository) Save(ctx context.Context, app model.Application) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, app)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.ID()] = app.ClearEvents()
	m.savedApps = append(m.savedApps, app)
	return nil
}

func (m *mockApplicationRepository) FindByID(_ context.Context, id string) (model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findByIDHits++
	app, ok := m.apps[id]
	if !ok {
		return model.Application{}, port.ErrApplicationNotFound
	}
	return app, nil
}

type mockScoreRepository struct {
	mu         sync.Mutex
	saveFunc   func(ctx context.Context, score model.CreditScore) error
	latest     map[string]model.CreditScore
	all        []model.CreditScore
	savedCount int
}

func newMockScoreRepository(scores ...model.CreditScore) *mockScoreRepository {
	m := &mockScoreRepository{latest: map[string]model.CreditScore{}}
	for _, s := range scores {
		m.latest[s.ApplicationID()] = s
		m.all = append(m.all, s)
	}
	return m
}

func (m *mockScoreRepository) Save(ctx context.Context, score model.CreditScore) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, score)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[score.ApplicationID()] = score
	m.all = append(m.all, score)
	m.savedCount++
	return nil
}

func (m *mockScoreRepository) FindLatestByApplicationID(_ context.Context, applicationID string) (model.CreditScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.latest[applicationID]
	if !ok {
		return model.CreditScore{}, port.ErrScoreNotFound
	}
	return s, nil
}

func (m *mockScoreRepository) List(_ context.Context, _ port.ScoreQuery) ([]model.CreditScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.CreditScore(nil), m.all...), nil
}

type mockScoreCache struct {
	mu          sync.Mutex
	getFunc     func(ctx context.Context, applicationID string) (model.CreditScore, bool, error)
	set         []string
	invalidated []string
}

func (m *mockScoreCache) Get(ctx context.Context, applicationID string) (model.CreditScore, bool, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, applicationID)
	}
	return model.CreditScore{}, false, nil
}

func (m *mockScoreCache) Set(_ context.Context, score model.CreditScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = append(m.set, score.ApplicationID())
	return nil
}

func (m *mockScoreCache) Invalidate(_ context.Context, applicationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, applicationID)
	return nil
}

type mockPredictor struct {
	predictFunc func(ctx context.Context, app model.ApplicationData) (port.Prediction, error)
}

func (m *mockPredictor) Predict(ctx context.Context, app model.ApplicationData) (port.Prediction, error) {
	return m.predictFunc(ctx, app)
}

type mockRecorder struct {
	mu       sync.Mutex
	scores   []model.ScoreResult
	failures []string
}

func (m *mockRecorder) RecordScore(_ context.Context, result model.ScoreResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, result)
}

func (m *mockRecorder) RecordFailure(_ context.Context, stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, stage)
}

// --- Fixtures ---

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testApplicationData() model.ApplicationData {
	return model.ApplicationData{
		Borrower: model.BorrowerInfo{
			FullName:          "Karim Ahmed",
			ResidencyStatus:   valueobject.ResidencyPermanent,
			YearsOfResidency:  10,
			GuarantorCategory: valueobject.GuarantorStrong,
		},
		Business: model.BusinessData{
			BusinessName:          "Karim General Store",
			BusinessType:          "grocery_shop",
			YearsOfOperation:      12,
			SellerType:            valueobject.SellerRetailer,
			AverageDailySales:     d(40000),
			LastMonthSales:        d(1200000),
			InventoryValuePresent: d(1200000),
			TotalExpenseLastMonth: d(300000),
			PersonalExpense:       d(20000),
		},
		Financial: model.FinancialData{
			ExistingLoans: []model.ExistingLoan{{
				FIName:             "City Bank",
				FIType:             valueobject.FITypeBank,
				OutstandingLoan:    d(200000),
				MonthlyInstallment: d(20000),
				RepaymentStatus:    valueobject.RepaymentOnTime,
				RepaidPercentage:   d(95),
			}},
			TotalAssets:    d(2500000),
			CashEquivalent: d(150000),
			MonthlyIncome:  d(200000),
		},
	}
}

func testApplication(id string) model.Application {
	app, err := model.NewApplication(id, testApplicationData(), "officer-1", d(300000), "inventory", testNow)
	if err != nil {
		panic(err)
	}
	return app
}

func storedScore(applicationID string, score string, grade valueobject.Grade, risk valueobject.RiskTier, at time.Time, flags ...model.RedFlag) model.CreditScore {
	return model.ReconstructCreditScore(
		"score-"+applicationID, applicationID,
		model.ScoreResult{
			ApplicationID: applicationID,
			FinalScore:    decimal.RequireFromString(score),
			Grade:         grade,
			RiskTier:      risk,
			RedFlags:      flags,
		},
		nil, at, "system", model.ScoringModelVersion,
	)
}
