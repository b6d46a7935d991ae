package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlifSrSE/css/internal/application/dto"
	"github.com/AlifSrSE/css/internal/domain/event"
	"github.com/AlifSrSE/css/internal/domain/port"
	"github.com/AlifSrSE/css/internal/infrastructure/kafka"
	"github.com/AlifSrSE/css/pkg/events"
	pkgkafka "github.com/AlifSrSE/css/pkg/kafka"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock implementations ---

type mockOutbox struct {
	mu          sync.Mutex
	entries     []events.OutboxEntry
	fetchErr    error
	markedBatch [][]string
	failed      map[string]string
}

func (m *mockOutbox) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []events.OutboxEntry
	for _, e := range m.entries {
		if e.PublishedAt == nil && e.FailedAt == nil && len(out) < batchSize {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockOutbox) MarkPublished(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markedBatch = append(m.markedBatch, ids)
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	for i := range m.entries {
		if set[m.entries[i].ID] {
			ts := testNow
			m.entries[i].PublishedAt = &ts
		}
	}
	return nil
}

func (m *mockOutbox) MarkFailed(_ context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed == nil {
		m.failed = map[string]string{}
	}
	m.failed[id] = reason
	for i := range m.entries {
		if m.entries[i].ID == id {
			ts := testNow
			m.entries[i].FailedAt = &ts
		}
	}
	return nil
}

func (m *mockOutbox) unpublished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.PublishedAt == nil {
			n++
		}
	}
	return n
}

type published struct {
	topic    string
	messages []pkgkafka.Message
}

type mockPublisher struct {
	publishFunc func(topic string) error
	calls       []published
}

func (m *mockPublisher) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	if m.publishFunc != nil {
		if err := m.publishFunc(topic); err != nil {
			return err
		}
	}
	m.calls = append(m.calls, published{topic: topic, messages: messages})
	return nil
}

type mockCalculator struct {
	executeFunc func(ctx context.Context, req dto.CalculateScoreRequest) (dto.CreditScoreResponse, error)
	requests    []dto.CalculateScoreRequest
}

func (m *mockCalculator) Execute(ctx context.Context, req dto.CalculateScoreRequest) (dto.CreditScoreResponse, error) {
	m.requests = append(m.requests, req)
	if m.executeFunc != nil {
		return m.executeFunc(ctx, req)
	}
	return dto.CreditScoreResponse{}, nil
}

func outboxEntry(t *testing.T, evt events.DomainEvent) events.OutboxEntry {
	t.Helper()
	e, err := events.NewOutboxEntry(evt)
	require.NoError(t, err)
	return e
}

var topics = kafka.Topics{Applications: "credit.applications", Scores: "credit.scores"}

// --- Relay ---

func TestOutboxRelay_RelayOnce(t *testing.T) {
	submitted := outboxEntry(t, event.NewApplicationSubmitted("APP-1", "officer-1", "grocery_shop", decimal.NewFromInt(1000), testNow))
	changed := outboxEntry(t, event.NewApplicationStatusChanged("APP-1", "pending", "processing", "", testNow))
	scored := outboxEntry(t, event.NewCreditScoreCalculated("score-1", "APP-1", decimal.NewFromInt(70), "A", "low", decimal.Zero, decimal.Zero, 0, 0, testNow))

	outbox := &mockOutbox{entries: []events.OutboxEntry{submitted, changed, scored}}
	pub := &mockPublisher{}
	relay := kafka.NewOutboxRelay(outbox, pub, topics, 10, time.Second, discardLogger())

	n, err := relay.RelayOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, pub.calls, 2)
	assert.Equal(t, "credit.applications", pub.calls[0].topic)
	require.Len(t, pub.calls[0].messages, 2)
	assert.Equal(t, "APP-1", string(pub.calls[0].messages[0].Key))
	assert.Equal(t, event.TypeApplicationSubmitted, pub.calls[0].messages[0].Headers["event_type"])
	assert.Equal(t, submitted.ID, pub.calls[0].messages[0].Headers["event_id"])
	assert.Equal(t, "credit.scores", pub.calls[1].topic)
	assert.Equal(t, []string{scored.ID}, outbox.markedBatch[1])

	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOutboxRelay_PublishFailureLeavesEntries(t *testing.T) {
	submitted := outboxEntry(t, event.NewApplicationSubmitted("APP-1", "", "grocery_shop", decimal.Zero, testNow))
	scored := outboxEntry(t, event.NewCreditScoreCalculated("score-1", "APP-1", decimal.Zero, "R", "very_high", decimal.Zero, decimal.Zero, 1, 0, testNow))
	outbox := &mockOutbox{entries: []events.OutboxEntry{submitted, scored}}
	pub := &mockPublisher{publishFunc: func(topic string) error {
		if topic == "credit.scores" {
			return errors.New("broker unavailable")
		}
		return nil
	}}
	relay := kafka.NewOutboxRelay(outbox, pub, topics, 10, time.Second, discardLogger())

	n, err := relay.RelayOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
	assert.Equal(t, 1, n)
	assert.NotNil(t, outbox.entries[0].PublishedAt)
	assert.Nil(t, outbox.entries[1].PublishedAt)
}

func TestOutboxRelay_UnknownAggregateIsDeadLettered(t *testing.T) {
	ledger := events.OutboxEntry{ID: "e1", AggregateType: "Ledger", EventType: "LedgerPosted"}
	scored := outboxEntry(t, event.NewCreditScoreCalculated("score-1", "APP-1", decimal.NewFromInt(70), "A", "low", decimal.Zero, decimal.Zero, 0, 0, testNow))
	outbox := &mockOutbox{entries: []events.OutboxEntry{ledger, scored}}
	pub := &mockPublisher{}
	relay := kafka.NewOutboxRelay(outbox, pub, topics, 10, time.Second, discardLogger())

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, outbox.failed["e1"], `no topic for aggregate type "Ledger"`)
	assert.NotNil(t, outbox.entries[1].PublishedAt)

	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, outbox.failed, 1)
}

func TestOutboxRelay_Run(t *testing.T) {
	var entries []events.OutboxEntry
	for range 5 {
		entries = append(entries, outboxEntry(t, event.NewApplicationSubmitted("APP-1", "", "grocery_shop", decimal.Zero, testNow)))
	}
	outbox := &mockOutbox{entries: entries}
	pub := &mockPublisher{}
	relay := kafka.NewOutboxRelay(outbox, pub, topics, 2, 5*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool { return outbox.unpublished() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}

// --- Consumer handler ---

func message(t *testing.T, evt events.DomainEvent, withHeader bool) pkgkafka.Message {
	t.Helper()
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	msg := pkgkafka.Message{Key: []byte(evt.AggregateID()), Value: payload}
	if withHeader {
		msg.Headers = map[string]string{"event_type": evt.EventType()}
	}
	return msg
}

func TestApplicationSubmittedHandler(t *testing.T) {
	submitted := event.NewApplicationSubmitted("APP-7", "officer-1", "grocery_shop", decimal.NewFromInt(1000), testNow)

	t.Run("scores submitted application", func(t *testing.T) {
		calc := &mockCalculator{executeFunc: func(context.Context, dto.CalculateScoreRequest) (dto.CreditScoreResponse, error) {
			return dto.CreditScoreResponse{Recalculated: true}, nil
		}}
		handler := kafka.NewApplicationSubmittedHandler(calc, discardLogger())

		require.NoError(t, handler(context.Background(), message(t, submitted, true)))

		require.Len(t, calc.requests, 1)
		assert.Equal(t, "APP-7", calc.requests[0].ApplicationID)
		assert.Equal(t, kafka.ConsumerCalculatedBy, calc.requests[0].CalculatedBy)
		assert.False(t, calc.requests[0].ForceRecalculate)
	})

	t.Run("falls back to payload event type", func(t *testing.T) {
		calc := &mockCalculator{}
		handler := kafka.NewApplicationSubmittedHandler(calc, discardLogger())

		require.NoError(t, handler(context.Background(), message(t, submitted, false)))
		assert.Len(t, calc.requests, 1)
	})

	t.Run("skips other events", func(t *testing.T) {
		calc := &mockCalculator{}
		handler := kafka.NewApplicationSubmittedHandler(calc, discardLogger())
		changed := event.NewApplicationStatusChanged("APP-7", "pending", "processing", "", testNow)

		require.NoError(t, handler(context.Background(), message(t, changed, true)))
		assert.Empty(t, calc.requests)
	})

	t.Run("drops undecodable payload", func(t *testing.T) {
		calc := &mockCalculator{}
		handler := kafka.NewApplicationSubmittedHandler(calc, discardLogger())

		err := handler(context.Background(), pkgkafka.Message{Value: []byte("{")})
		assert.NoError(t, err)
		assert.Empty(t, calc.requests)
	})

	t.Run("acknowledges missing application", func(t *testing.T) {
		calc := &mockCalculator{executeFunc: func(context.Context, dto.CalculateScoreRequest) (dto.CreditScoreResponse, error) {
			return dto.CreditScoreResponse{}, port.ErrApplicationNotFound
		}}
		handler := kafka.NewApplicationSubmittedHandler(calc, discardLogger())

		assert.NoError(t, handler(context.Background(), message(t, submitted, true)))
	})

	t.Run("returns transient failures", func(t *testing.T) {
		calc := &mockCalculator{executeFunc: func(context.Context, dto.CalculateScoreRequest) (dto.CreditScoreResponse, error) {
			return dto.CreditScoreResponse{}, errors.New("db down")
		}}
		handler := kafka.NewApplicationSubmittedHandler(calc, discardLogger())

		err := handler(context.Background(), message(t, submitted, true))
		assert.ErrorContains(t, err, "score application APP-7: db down")
	})
}
