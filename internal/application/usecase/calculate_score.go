package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
	"github.com/AlifSrSE/css/internal/domain/service"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
)

// CalculateScoreUseCase scores one application and persists the result.
type CalculateScoreUseCase struct {
	apps         port.ApplicationRepository
	scores       port.ScoreRepository
	cache        port.ScoreCache
	predictor    port.DefaultPredictor
	policies     *PolicyStore
	psychometric *service.PsychometricModel
	recorder     port.ScoringRecorder
	logger       *slog.Logger
	now          func() time.Time
}

// NewCalculateScoreUseCase wires dependencies. predictor may be nil.
func NewCalculateScoreUseCase(
	apps port.ApplicationRepository,
	scores port.ScoreRepository,
	cache port.ScoreCache,
	predictor port.DefaultPredictor,
	policies *PolicyStore,
	psychometric *service.PsychometricModel,
	recorder port.ScoringRecorder,
	logger *slog.Logger,
) *CalculateScoreUseCase {
	return &CalculateScoreUseCase{
		apps:         apps,
		scores:       scores,
		cache:        cache,
		predictor:    predictor,
		policies:     policies,
		psychometric: psychometric,
		recorder:     recorder,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Execute returns the stored score for the application, or calculates a new
// one when none exists or a recalculation is forced.
func (uc *CalculateScoreUseCase) Execute(ctx context.Context, req dto.CalculateScoreRequest) (dto.CreditScoreResponse, error) {
	// 1. Reuse an existing score unless forced.
	if !req.ForceRecalculate {
		existing, err := uc.scores.FindLatestByApplicationID(ctx, req.ApplicationID)
		if err == nil {
			return toScoreResponse(existing, false), nil
		}
		if !errors.Is(err, port.ErrScoreNotFound) {
			return dto.CreditScoreResponse{}, fmt.Errorf("find existing score: %w", err)
		}
	}

	// 2. Load the application.
	app, err := uc.apps.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.CreditScoreResponse{}, fmt.Errorf("load application %s: %w", req.ApplicationID, err)
	}

	// 3. Validate psychometric responses before they reach the engine.
	responses, err := uc.psychometricInput(ctx, app.ID(), req)
	if err != nil {
		return dto.CreditScoreResponse{}, err
	}

	// 4. Mark the application as processing. An application left in
	// processing by an interrupted run is restarted.
	now := uc.now()
	if app.Status().Equal(valueobject.StatusProcessing) {
		uc.logger.WarnContext(ctx, "restarting interrupted scoring run", "application_id", app.ID())
	}
	app, err = app.StartProcessing(now)
	if err != nil {
		return dto.CreditScoreResponse{}, fmt.Errorf("start processing: %w", err)
	}
	if err := uc.apps.Save(ctx, app); err != nil {
		return dto.CreditScoreResponse{}, fmt.Errorf("save application: %w", err)
	}
	app = app.ClearEvents()

	// 5. Score against the current policy snapshot.
	result, err := uc.policies.Engine().Score(app.ID(), app.Data(), responses)
	if err != nil {
		uc.fail(ctx, app, err)
		return dto.CreditScoreResponse{}, err
	}

	// 6. Ask the optional predictor for an advisory opinion.
	prediction := uc.predict(ctx, app, result)

	// 7. Persist the score; its CreditScoreCalculated event goes to the outbox.
	score := model.NewCreditScore(result, prediction, req.CalculatedBy, now)
	if err := uc.scores.Save(ctx, score); err != nil {
		uc.fail(ctx, app, err)
		return dto.CreditScoreResponse{}, fmt.Errorf("save score: %w", err)
	}

	// 8. Complete the application.
	completed, err := app.Complete(uc.now())
	if err != nil {
		uc.fail(ctx, app, err)
		return dto.CreditScoreResponse{}, fmt.Errorf("complete application: %w", err)
	}
	if err := uc.apps.Save(ctx, completed); err != nil {
		uc.fail(ctx, app, err)
		return dto.CreditScoreResponse{}, fmt.Errorf("save application: %w", err)
	}
	app = completed

	// 9. Drop the cached score so readers see the new one.
	if err := uc.cache.Invalidate(ctx, app.ID()); err != nil {
		uc.logger.WarnContext(ctx, "score cache invalidation failed",
			"application_id", app.ID(), "error", err)
	}

	uc.recorder.RecordScore(ctx, result)
	uc.logger.InfoContext(ctx, "credit score calculated",
		"application_id", app.ID(),
		"score", result.FinalScore.String(),
		"grade", result.Grade.String(),
		"risk_level", result.RiskTier.String(),
	)
	return toScoreResponse(score, true), nil
}

func (uc *CalculateScoreUseCase) psychometricInput(
	ctx context.Context,
	applicationID string,
	req dto.CalculateScoreRequest,
) (*model.PsychometricResponses, error) {
	if req.Psychometric == nil {
		return nil, nil
	}
	v := uc.psychometric.Validate(*req.Psychometric)
	if v.Valid {
		r := *req.Psychometric
		if r.StartTime != nil && r.EndTime == nil {
			end := uc.now()
			r.EndTime = &end
		}
		return &r, nil
	}
	if req.StrictPsychometric {
		return nil, &service.ValidationError{Problems: v.Errors}
	}
	uc.logger.WarnContext(ctx, "ignoring invalid psychometric responses",
		"application_id", applicationID, "errors", v.Errors)
	return nil, nil
}

func (uc *CalculateScoreUseCase) predict(ctx context.Context, app model.Application, result model.ScoreResult) *model.AIPrediction {
	if uc.predictor == nil {
		return nil
	}
	p, err := uc.predictor.Predict(ctx, app.Data())
	if err != nil {
		uc.logger.WarnContext(ctx, "default predictor unavailable",
			"application_id", app.ID(), "error", err)
		return nil
	}
	ai := service.AssessPrediction(p.Probability, p.Confidence, p.ModelVersion, result.Grade)
	return &ai
}

// fail returns the application to pending after a failed run.
func (uc *CalculateScoreUseCase) fail(ctx context.Context, app model.Application, cause error) {
	stage := "persist"
	var ce *service.ComputationError
	if errors.As(cause, &ce) {
		stage = ce.Stage
	}
	uc.recorder.RecordFailure(ctx, stage)
	uc.logger.ErrorContext(ctx, "credit scoring failed",
		"application_id", app.ID(), "stage", stage, "error", cause)

	reverted, err := app.ReturnToPending(cause.Error(), uc.now())
	if err != nil {
		return
	}
	if err := uc.apps.Save(ctx, reverted); err != nil {
		uc.logger.ErrorContext(ctx, "failed to return application to pending",
			"application_id", app.ID(), "error", err)
	}
}

func toScoreResponse(score model.CreditScore, recalculated bool) dto.CreditScoreResponse {
	result := score.Result()
	return dto.CreditScoreResponse{
		ID:           score.ID(),
		Result:       result,
		Summary:      result.Summary(),
		AIPrediction: score.AIPrediction(),
		CalculatedAt: score.CalculatedAt(),
		CalculatedBy: score.CalculatedBy(),
		ModelVersion: score.ModelVersion(),
		Recalculated: recalculated,
	}
}
