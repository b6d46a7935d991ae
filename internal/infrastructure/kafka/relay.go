package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlifSrSE/css/internal/domain/event"
	"github.com/AlifSrSE/css/pkg/events"
	pkgkafka "github.com/AlifSrSE/css/pkg/kafka"
)

// Publisher sends messages to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Topics maps aggregate types to Kafka topics.
type Topics struct {
	Applications string
	Scores       string
}

func (t Topics) forAggregate(aggregateType string) (string, error) {
	switch aggregateType {
	case event.AggregateApplication:
		return t.Applications, nil
	case event.AggregateCreditScore:
		return t.Scores, nil
	default:
		return "", fmt.Errorf("no topic for aggregate type %q", aggregateType)
	}
}

// OutboxRelay publishes outbox rows to Kafka and marks them published.
// Delivery is at least once: a crash between publish and mark re-sends
// the batch.
type OutboxRelay struct {
	outbox    events.OutboxRepository
	publisher Publisher
	topics    Topics
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

// NewOutboxRelay creates a relay polling every interval for up to batchSize
// entries.
func NewOutboxRelay(
	outbox events.OutboxRepository,
	publisher Publisher,
	topics Topics,
	batchSize int,
	interval time.Duration,
	logger *slog.Logger,
) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		topics:    topics,
		batchSize: batchSize,
		interval:  interval,
		logger:    logger,
	}
}

// Run relays until ctx is canceled.
func (r *OutboxRelay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay starting", "interval", r.interval, "batch_size", r.batchSize)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopping")
			return nil
		case <-ticker.C:
			// Drain full batches before waiting for the next tick.
			for {
				n, err := r.RelayOnce(ctx)
				if err != nil {
					r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
					break
				}
				if n < r.batchSize {
					break
				}
			}
		}
	}
}

// RelayOnce publishes one batch and returns the number of entries published.
// Entries are grouped per topic and published in outbox order. An entry whose
// aggregate type maps to no topic is marked failed so it stops blocking the
// queue.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var (
		order    []string
		byTopic  = map[string][]pkgkafka.Message{}
		idsTopic = map[string][]string{}
	)
	for _, e := range entries {
		topic, err := r.topics.forAggregate(e.AggregateType)
		if err != nil {
			r.logger.ErrorContext(ctx, "dead-lettering outbox entry",
				"event_id", e.ID, "event_type", e.EventType, "error", err)
			if err := r.outbox.MarkFailed(ctx, e.ID, err.Error()); err != nil {
				return 0, fmt.Errorf("mark outbox entry %s failed: %w", e.ID, err)
			}
			continue
		}
		if _, seen := byTopic[topic]; !seen {
			order = append(order, topic)
		}
		byTopic[topic] = append(byTopic[topic], toMessage(e))
		idsTopic[topic] = append(idsTopic[topic], e.ID)
	}

	published := 0
	for _, topic := range order {
		if err := r.publisher.Publish(ctx, topic, byTopic[topic]...); err != nil {
			return published, fmt.Errorf("publish to %s: %w", topic, err)
		}
		if err := r.outbox.MarkPublished(ctx, idsTopic[topic]); err != nil {
			return published, fmt.Errorf("mark published: %w", err)
		}
		published += len(idsTopic[topic])
		r.logger.DebugContext(ctx, "outbox entries relayed", "topic", topic, "count", len(idsTopic[topic]))
	}
	return published, nil
}

func toMessage(e events.OutboxEntry) pkgkafka.Message {
	return pkgkafka.Message{
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"aggregate_type": e.AggregateType,
			"event_id":       e.ID,
		},
	}
}
