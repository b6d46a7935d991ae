package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/port"
)

// DefaultBulkParallelism bounds concurrent scoring runs in a bulk request.
const DefaultBulkParallelism = 8

// BulkCalculateUseCase scores many applications. A failing item is recorded
// and never stops the rest of the batch.
type BulkCalculateUseCase struct {
	calculate   *CalculateScoreUseCase
	parallelism int
	logger      *slog.Logger
}

// NewBulkCalculateUseCase wires dependencies. A non-positive parallelism
// uses DefaultBulkParallelism.
func NewBulkCalculateUseCase(calculate *CalculateScoreUseCase, parallelism int, logger *slog.Logger) *BulkCalculateUseCase {
	if parallelism <= 0 {
		parallelism = DefaultBulkParallelism
	}
	return &BulkCalculateUseCase{calculate: calculate, parallelism: parallelism, logger: logger}
}

// Execute scores every requested application. Errors are reported in the
// order of the request.
func (uc *BulkCalculateUseCase) Execute(ctx context.Context, req dto.BulkCalculateRequest) dto.BulkCalculateResponse {
	failures := make([]error, len(req.ApplicationIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.parallelism)
	for i, id := range req.ApplicationIDs {
		g.Go(func() error {
			_, failures[i] = uc.calculate.Execute(gctx, dto.CalculateScoreRequest{
				ApplicationID:    id,
				ForceRecalculate: req.ForceRecalculate,
				CalculatedBy:     req.CalculatedBy,
			})
			return nil
		})
	}
	_ = g.Wait()

	resp := dto.BulkCalculateResponse{Processed: len(req.ApplicationIDs), Errors: []string{}}
	for i, err := range failures {
		id := req.ApplicationIDs[i]
		switch {
		case err == nil:
			resp.Successful++
		case errors.Is(err, port.ErrApplicationNotFound):
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("Application %s not found", id))
		default:
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("Application %s: %v", id, err))
		}
	}

	uc.logger.InfoContext(ctx, "bulk scoring finished",
		"processed", resp.Processed, "successful", resp.Successful, "failed", resp.Failed)
	return resp
}
