package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
)

// SubmitApplicationUseCase stores a new application. The repository writes
// its ApplicationSubmitted event to the outbox, which in turn triggers
// asynchronous scoring.
type SubmitApplicationUseCase struct {
	apps   port.ApplicationRepository
	logger *slog.Logger
}

// NewSubmitApplicationUseCase wires dependencies.
func NewSubmitApplicationUseCase(apps port.ApplicationRepository, logger *slog.Logger) *SubmitApplicationUseCase {
	return &SubmitApplicationUseCase{apps: apps, logger: logger}
}

// Execute creates and persists the application in pending status.
func (uc *SubmitApplicationUseCase) Execute(ctx context.Context, req dto.SubmitApplicationRequest) (dto.ApplicationResponse, error) {
	app, err := model.NewApplication(
		req.ApplicationID, req.Data, req.SubmittedBy,
		req.LoanAmountRequested, req.LoanPurpose, time.Now().UTC(),
	)
	if err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("create application: %w", err)
	}

	if err := uc.apps.Save(ctx, app); err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("save application: %w", err)
	}

	uc.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID(), "business_type", app.Business().BusinessType)
	return toApplicationResponse(app), nil
}

func toApplicationResponse(app model.Application) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:                  app.ID(),
		Status:              app.Status().String(),
		BusinessName:        app.Business().BusinessName,
		BusinessType:        app.Business().BusinessType,
		SubmittedBy:         app.SubmittedBy(),
		LoanAmountRequested: app.LoanAmountRequested(),
		LoanPurpose:         app.LoanPurpose(),
		Version:             app.Version(),
		CreatedAt:           app.CreatedAt(),
		UpdatedAt:           app.UpdatedAt(),
	}
}
