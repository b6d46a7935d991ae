package ml

import (
	"context"
	"log/slog"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
)

// StubModelVersion identifies predictions made by StubPredictor.
const StubModelVersion = "stub-0"

// StubPredictor implements port.DefaultPredictor for development. It
// returns a neutral estimate with low confidence so no grade adjustment is
// ever suggested.
type StubPredictor struct {
	logger *slog.Logger
}

// NewStubPredictor creates a new stub predictor.
func NewStubPredictor(logger *slog.Logger) *StubPredictor {
	return &StubPredictor{logger: logger}
}

func (s *StubPredictor) Predict(ctx context.Context, app model.ApplicationData) (port.Prediction, error) {
	s.logger.DebugContext(ctx, "stub default prediction requested",
		slog.String("business_type", app.Business.BusinessType),
	)
	return port.Prediction{Probability: 0.10, Confidence: 0.5, ModelVersion: StubModelVersion}, nil
}
