package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/port"
)

// GetScoreUseCase reads the latest score of an application through the cache.
type GetScoreUseCase struct {
	scores port.ScoreRepository
	cache  port.ScoreCache
	logger *slog.Logger
}

// NewGetScoreUseCase wires dependencies.
func NewGetScoreUseCase(scores port.ScoreRepository, cache port.ScoreCache, logger *slog.Logger) *GetScoreUseCase {
	return &GetScoreUseCase{scores: scores, cache: cache, logger: logger}
}

// Execute returns the latest score, or port.ErrScoreNotFound.
func (uc *GetScoreUseCase) Execute(ctx context.Context, applicationID string) (dto.CreditScoreResponse, error) {
	cached, found, err := uc.cache.Get(ctx, applicationID)
	if err != nil {
		uc.logger.WarnContext(ctx, "score cache read failed",
			"application_id", applicationID, "error", err)
	}
	if found {
		return toScoreResponse(cached, false), nil
	}

	score, err := uc.scores.FindLatestByApplicationID(ctx, applicationID)
	if err != nil {
		return dto.CreditScoreResponse{}, fmt.Errorf("get score for %s: %w", applicationID, err)
	}

	if err := uc.cache.Set(ctx, score); err != nil {
		uc.logger.WarnContext(ctx, "score cache write failed",
			"application_id", applicationID, "error", err)
	}
	return toScoreResponse(score, false), nil
}
