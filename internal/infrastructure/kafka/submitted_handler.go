package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/event"
	"github.com/AlifSrSE/css/internal/domain/port"
	pkgkafka "github.com/AlifSrSE/css/pkg/kafka"
)

// ScoreCalculator is the use case the handler drives.
type ScoreCalculator interface {
	Execute(ctx context.Context, req dto.CalculateScoreRequest) (dto.CreditScoreResponse, error)
}

// ConsumerCalculatedBy is recorded on scores produced from submitted events.
const ConsumerCalculatedBy = "application-consumer"

type submittedPayload struct {
	EventType     string `json:"event_type"`
	ApplicationID string `json:"aggregate_id"`
}

// NewApplicationSubmittedHandler returns a consumer handler that scores each
// newly submitted application. Other application events are skipped.
// Messages that can never succeed are logged and acknowledged; other
// failures are returned so the message is not committed.
func NewApplicationSubmittedHandler(calc ScoreCalculator, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		eventType := msg.Headers["event_type"]

		var p submittedPayload
		if err := json.Unmarshal(msg.Value, &p); err != nil {
			logger.WarnContext(ctx, "dropping undecodable message", "key", string(msg.Key), "error", err)
			return nil
		}
		if eventType == "" {
			eventType = p.EventType
		}
		if eventType != event.TypeApplicationSubmitted {
			return nil
		}
		if p.ApplicationID == "" {
			logger.WarnContext(ctx, "dropping submitted event without application id")
			return nil
		}

		resp, err := calc.Execute(ctx, dto.CalculateScoreRequest{
			ApplicationID: p.ApplicationID,
			CalculatedBy:  ConsumerCalculatedBy,
		})
		switch {
		case errors.Is(err, port.ErrApplicationNotFound):
			logger.WarnContext(ctx, "submitted application not found", "application_id", p.ApplicationID)
			return nil
		case err != nil:
			return fmt.Errorf("score application %s: %w", p.ApplicationID, err)
		}

		logger.InfoContext(ctx, "scored submitted application",
			"application_id", p.ApplicationID,
			"grade", resp.Result.Grade.String(),
			"recalculated", resp.Recalculated,
		)
		return nil
	}
}
