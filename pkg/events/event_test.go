package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoreCalculated struct {
	BaseEvent
	Grade string `json:"grade"`
}

func TestNewBaseEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("BDT", 6*3600))

	event := NewBaseEvent("credit.score.calculated", "app-123", "CreditScore", at)

	assert.NotEmpty(t, event.EventID())
	assert.Equal(t, "credit.score.calculated", event.EventType())
	assert.Equal(t, "app-123", event.AggregateID())
	assert.Equal(t, "CreditScore", event.AggregateType())
	assert.Equal(t, at.UTC(), event.OccurredAt())
	assert.Equal(t, time.UTC, event.OccurredAt().Location())
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
	var _ DomainEvent = scoreCalculated{}
}

func TestNewOutboxEntry(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	event := scoreCalculated{
		BaseEvent: NewBaseEvent("credit.score.calculated", "app-789", "CreditScore", at),
		Grade:     "A",
	}

	entry, err := NewOutboxEntry(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), entry.ID)
	assert.Equal(t, "app-789", entry.AggregateID)
	assert.Equal(t, "CreditScore", entry.AggregateType)
	assert.Equal(t, "credit.score.calculated", entry.EventType)
	assert.Equal(t, at, entry.CreatedAt)
	assert.Nil(t, entry.PublishedAt)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(entry.Payload, &decoded))
	assert.Equal(t, "A", decoded["grade"])
	assert.Equal(t, "app-789", decoded["aggregate_id"])
	assert.Equal(t, "credit.score.calculated", decoded["event_type"])
}
