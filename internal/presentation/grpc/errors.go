package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AlifSrSE/css/internal/domain/model"
	"github.com/AlifSrSE/css/internal/domain/port"
	"github.com/AlifSrSE/css/internal/domain/service"
	"github.com/AlifSrSE/css/internal/domain/valueobject"
	"github.com/AlifSrSE/css/internal/infrastructure/schema"
)

// toStatus maps domain and application errors to gRPC status codes.
// Unexpected errors become Internal without leaking their text.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var compErr *service.ComputationError
	switch {
	case errors.Is(err, port.ErrApplicationNotFound), errors.Is(err, port.ErrScoreNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidWeights),
		errors.Is(err, service.ErrInvalidThresholds),
		errors.Is(err, service.ErrInvalidPsychometric),
		errors.Is(err, schema.ErrInvalidDocument),
		errors.Is(err, model.ErrInvalidApplication):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, port.ErrConcurrentModification),
		errors.Is(err, valueobject.ErrInvalidStatusTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &compErr):
		return status.Errorf(codes.Internal, "scoring failed at stage %s", compErr.Stage)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
