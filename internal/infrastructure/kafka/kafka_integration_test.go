//go:build integration

package kafka_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/event"
	"github.com/AlifSrSE/css/internal/infrastructure/kafka"
	"github.com/AlifSrSE/css/pkg/events"
	pkgkafka "github.com/AlifSrSE/css/pkg/kafka"
	"github.com/AlifSrSE/css/pkg/testutil"
)

func TestRelayToConsumer_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := testutil.StartKafka(ctx, t, topics.Applications, topics.Scores)

	cfg := broker.Config("credit-scoring-it")
	producer, err := pkgkafka.NewProducer(cfg)
	require.NoError(t, err)
	defer producer.Close()

	outbox := &mockOutbox{entries: []events.OutboxEntry{
		outboxEntry(t, event.NewApplicationSubmitted(testutil.TestApplicationID1, testutil.TestOfficer, "pharmacy", decimal.NewFromInt(50000), testNow)),
		outboxEntry(t, event.NewApplicationStatusChanged(testutil.TestApplicationID1, "pending", "processing", "", testNow)),
	}}
	relay := kafka.NewOutboxRelay(outbox, producer, topics, 10, time.Second, discardLogger())
	n, err := relay.RelayOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	var (
		mu     sync.Mutex
		scored []string
	)
	calc := &mockCalculator{executeFunc: func(_ context.Context, req dto.CalculateScoreRequest) (dto.CreditScoreResponse, error) {
		mu.Lock()
		defer mu.Unlock()
		scored = append(scored, req.ApplicationID)
		return dto.CreditScoreResponse{}, nil
	}}
	consumer, err := pkgkafka.NewConsumer(cfg, topics.Applications,
		kafka.NewApplicationSubmittedHandler(calc, discardLogger()), discardLogger())
	require.NoError(t, err)
	defer consumer.Close()

	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = consumer.Start(consumeCtx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(scored) == 1
	}, 90*time.Second, 200*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{testutil.TestApplicationID1}, scored)
}
