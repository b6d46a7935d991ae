package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlifSrSE/css/pkg/events"
	pkgpostgres "github.com/AlifSrSE/css/pkg/postgres"
)

const insertOutboxSQL = `
	INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// writeOutbox records events in the outbox table using q, which is the
// transaction that persists the aggregate.
func writeOutbox(ctx context.Context, q pkgpostgres.Querier, evts []events.DomainEvent) error {
	for _, evt := range evts {
		entry, err := events.NewOutboxEntry(evt)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			return fmt.Errorf("outbox event id %q: %w", entry.ID, err)
		}
		if _, err := q.Exec(ctx, insertOutboxSQL,
			id, entry.AggregateID, entry.AggregateType, entry.EventType, entry.Payload, entry.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert outbox event: %w", err)
		}
	}
	return nil
}

// OutboxRepository implements events.OutboxRepository using PostgreSQL.
type OutboxRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewOutboxRepository creates a new PostgreSQL-backed OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

// FetchUnpublished returns up to batchSize unpublished entries, oldest first.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	const query = `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL AND failed_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var (
			id uuid.UUID
			e  events.OutboxEntry
		)
		if err := rows.Scan(&id, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		e.ID = id.String()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox rows: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given entries as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		u, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("outbox id %q: %w", id, err)
		}
		parsed = append(parsed, u)
	}

	const query = `UPDATE outbox SET published_at = $1 WHERE id = ANY($2)`
	if _, err := r.pool.Exec(ctx, query, r.now(), parsed); err != nil {
		return fmt.Errorf("failed to mark outbox entries published: %w", err)
	}
	return nil
}

// MarkFailed takes an entry out of the relay queue and records why.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id, reason string) error {
	u, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("outbox id %q: %w", id, err)
	}
	const query = `UPDATE outbox SET failed_at = $1, failure = $2 WHERE id = $3`
	if _, err := r.pool.Exec(ctx, query, r.now(), reason, u); err != nil {
		return fmt.Errorf("failed to mark outbox entry failed: %w", err)
	}
	return nil
}
