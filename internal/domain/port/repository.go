package port

import (
	"context"
	"errors"
	"time"

	"github.com/AlifSrSE/css/internal/domain/model"
)

var (
	// ErrApplicationNotFound is returned when no application has the given ID.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrScoreNotFound is returned when an application has no stored score.
	ErrScoreNotFound = errors.New("credit score not found")
	// ErrConcurrentModification is returned when a save loses an optimistic
	// version check.
	ErrConcurrentModification = errors.New("application was modified concurrently")
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// ApplicationRepository persists and retrieves credit applications. Save
// also records the aggregate's pending domain events in the outbox.
type ApplicationRepository interface {
	Save(ctx context.Context, app model.Application) error
	FindByID(ctx context.Context, id string) (model.Application, error)
}

// ScoreQuery bounds a score listing by calculation time. Zero times are
// unbounded.
type ScoreQuery struct {
	Since time.Time
	Until time.Time
	Limit int
}

// ScoreRepository persists credit scores. Scores are append-only: a
// recalculation stores a new record and the latest one wins.
type ScoreRepository interface {
	Save(ctx context.Context, score model.CreditScore) error
	FindLatestByApplicationID(ctx context.Context, applicationID string) (model.CreditScore, error)
	List(ctx context.Context, q ScoreQuery) ([]model.CreditScore, error)
}

// ---------------------------------------------------------------------------
// Cache port
// ---------------------------------------------------------------------------

// ScoreCache holds the latest score per application. A miss returns
// found == false with a nil error.
type ScoreCache interface {
	Get(ctx context.Context, applicationID string) (score model.CreditScore, found bool, err error)
	Set(ctx context.Context, score model.CreditScore) error
	Invalidate(ctx context.Context, applicationID string) error
}

// ---------------------------------------------------------------------------
// External service ports
// ---------------------------------------------------------------------------

// Prediction is the raw output of a default-probability model.
type Prediction struct {
	Probability  float64
	Confidence   float64
	ModelVersion string
}

// DefaultPredictor estimates the probability that an applicant defaults.
type DefaultPredictor interface {
	Predict(ctx context.Context, app model.ApplicationData) (Prediction, error)
}

// ---------------------------------------------------------------------------
// Metrics port
// ---------------------------------------------------------------------------

// ScoringRecorder records scoring outcomes.
type ScoringRecorder interface {
	RecordScore(ctx context.Context, result model.ScoreResult)
	RecordFailure(ctx context.Context, stage string)
}
